package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/pkg/hash"
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("user_name = ?", name).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) VerifyPassword(user *models.User, password string) bool {
	return hash.CheckPassword(user.PasswordHash, password)
}

func (r *GormRepo) Roles(ctx context.Context, user *models.User) ([]string, error) {
	var roles []models.Role
	if err := r.DB.WithContext(ctx).Model(user).Association("Roles").Find(&roles); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

// Save writes the user row. Role links are left untouched.
func (r *GormRepo) Save(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// CreateUserIfNotExists inserts u with the given roles unless a user with the
// same email already exists. It reports whether a row was created.
func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User, roles ...string) (bool, error) {
	tx := r.DB.WithContext(ctx).Where("lower(email) = lower(?)", u.Email).Omit(clause.Associations).FirstOrCreate(u)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return false, nil
	}

	for _, name := range roles {
		role, err := r.EnsureRole(ctx, name)
		if err != nil {
			return true, err
		}
		if err := r.DB.WithContext(ctx).Model(u).Association("Roles").Append(role); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (r *GormRepo) EnsureRole(ctx context.Context, name string) (*models.Role, error) {
	role := models.Role{Name: name}
	if err := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
