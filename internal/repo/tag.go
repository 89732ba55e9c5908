package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
)

func (r *GormRepo) GetTags(ctx context.Context) ([]models.Tag, error) {
	items := make([]models.Tag, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.DB.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (r *GormRepo) TagNameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Tag{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateTag(ctx context.Context, tag *models.Tag) error {
	return r.DB.WithContext(ctx).Create(tag).Error
}

func (r *GormRepo) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return r.DB.WithContext(ctx).Save(tag).Error
}

func (r *GormRepo) DeleteTag(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM client_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
