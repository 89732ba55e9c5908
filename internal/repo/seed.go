package repo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/pkg/hash"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

type SeedAdmin struct {
	Email    string
	Password string
}

// Seed fills an empty database with the admin account, default tags, a few
// clients with payments and the initial rate. Every step is skipped when its
// table already holds data.
func (r *GormRepo) Seed(ctx context.Context, admin SeedAdmin) error {
	l := logging.FromContext(ctx).With("svc", "repo.seed")

	if _, err := r.EnsureRole(ctx, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed role: %w", err)
	}

	if admin.Password == "" {
		l.Warn("seed_admin_skipped", "reason", "no admin password configured")
	} else if err := r.seedAdmin(ctx, admin); err != nil {
		return err
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		tags := []models.Tag{
			{Name: "VIP", Color: "#FF5733"},
			{Name: "New", Color: "#33FF57"},
			{Name: "Inactive", Color: "#3357FF"},
		}
		if err := r.DB.WithContext(ctx).Create(&tags).Error; err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}
	}

	if err := r.DB.WithContext(ctx).Model(&models.Client{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		tags, err := r.GetTags(ctx)
		if err != nil {
			return err
		}
		if len(tags) < 3 {
			return fmt.Errorf("seed clients: expected default tags, got %d", len(tags))
		}
		clients := []models.Client{
			{Name: "John Doe", Email: "john@example.com", Balance: 1000, Tags: []models.Tag{tags[0], tags[1]}},
			{Name: "Jane Smith", Email: "jane@example.com", Balance: 2000, Tags: []models.Tag{tags[0]}},
			{Name: "Bob Johnson", Email: "bob@example.com", Balance: 1500, Tags: []models.Tag{tags[2]}},
		}
		if err := r.DB.WithContext(ctx).Create(&clients).Error; err != nil {
			return fmt.Errorf("seed clients: %w", err)
		}
	}

	if err := r.DB.WithContext(ctx).Model(&models.Payment{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		clients, err := r.GetClients(ctx)
		if err != nil {
			return err
		}
		if len(clients) > 0 {
			now := time.Now().UTC()
			for i := 0; i < 5; i++ {
				p := models.Payment{
					ClientID:  clients[rand.IntN(len(clients))].ID,
					Amount:    float64(100 + rand.IntN(900)),
					CreatedAt: now.AddDate(0, 0, -i),
				}
				if err := r.CreatePayment(ctx, &p); err != nil {
					return fmt.Errorf("seed payments: %w", err)
				}
			}
		}
	}

	if err := r.DB.WithContext(ctx).Model(&models.Rate{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := r.CreateRate(ctx, &models.Rate{Value: 10}); err != nil {
			return fmt.Errorf("seed rate: %w", err)
		}
	}

	return nil
}

func (r *GormRepo) seedAdmin(ctx context.Context, admin SeedAdmin) error {
	pw, err := hash.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	created, err := r.CreateUserIfNotExists(ctx, &models.User{
		UserName:     admin.Email,
		Email:        admin.Email,
		PasswordHash: pw,
	}, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logging.FromContext(ctx).Info("seed_admin_created", "email", admin.Email)
	}
	return nil
}
