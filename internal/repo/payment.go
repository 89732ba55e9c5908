package repo

import (
	"context"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
)

// GetRecentPayments returns the newest take payments with their client.
func (r *GormRepo) GetRecentPayments(ctx context.Context, take int) ([]models.Payment, error) {
	items := make([]models.Payment, 0, take)
	if err := r.DB.WithContext(ctx).
		Preload("Client").
		Order("created_at DESC").
		Order("id DESC").
		Limit(take).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Omit("Client").Create(p).Error
}
