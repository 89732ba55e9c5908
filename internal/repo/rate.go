package repo

import (
	"context"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
)

func (r *GormRepo) GetCurrentRate(ctx context.Context) (*models.Rate, error) {
	var rate models.Rate
	if err := r.DB.WithContext(ctx).Order("updated_at DESC").Order("id DESC").First(&rate).Error; err != nil {
		return nil, notFound(err)
	}
	return &rate, nil
}

func (r *GormRepo) CreateRate(ctx context.Context, rate *models.Rate) error {
	return r.DB.WithContext(ctx).Create(rate).Error
}
