package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
)

func (r *GormRepo) GetClients(ctx context.Context) ([]models.Client, error) {
	items := make([]models.Client, 0)
	if err := r.DB.WithContext(ctx).Preload("Tags").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := r.DB.WithContext(ctx).Preload("Tags").First(&client, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *GormRepo) GetClientsByIDs(ctx context.Context, ids []uint) ([]models.Client, error) {
	items := make([]models.Client, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Preload("Tags").Where("id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) SearchClients(ctx context.Context, q string, limit int) ([]models.Client, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	items := make([]models.Client, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Tags").
		Where("lower(name) LIKE ? OR lower(email) LIKE ?", pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ClientFieldTaken reports whether another client (not exceptID) already uses value in column.
func (r *GormRepo) ClientFieldTaken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Client{}).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateClient(ctx context.Context, client *models.Client) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(client).Error
}

func (r *GormRepo) UpdateClient(ctx context.Context, client *models.Client) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(client).Error
}

func (r *GormRepo) DeleteClient(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client := models.Client{ID: id}
		if err := tx.Model(&client).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
