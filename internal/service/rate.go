package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/pkg/cache"
	"github.com/Skotchmaster/admin_dashboard/pkg/events"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

const rateCacheKey = "rate:current"

type RateService struct {
	Repo      *repo.GormRepo
	Cache     *cache.Cache
	Publisher events.Publisher
}

func (s *RateService) GetCurrentRate(ctx context.Context) (*models.Rate, error) {
	rate, err := cache.GetOrLoad(ctx, s.Cache, rateCacheKey, s.Repo.GetCurrentRate)
	if err != nil {
		return nil, fmt.Errorf("current rate: %w", err)
	}
	return rate, nil
}

func (s *RateService) UpdateRate(ctx context.Context, value float64) (*models.Rate, error) {
	l := logging.FromContext(ctx).With("svc", "rate.update")

	if value <= 0 {
		l.Warn("rate_update_failed", "status", 400, "reason", "non-positive value", "value", value)
		return nil, newValidationError("value", "Rate must be greater than 0")
	}

	rate := &models.Rate{Value: value}
	if err := s.Repo.CreateRate(ctx, rate); err != nil {
		l.Error("rate_update_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create rate: %w", err)
	}
	s.Cache.Remove(ctx, rateCacheKey)

	if s.Publisher != nil {
		ev := events.New("rate_updated", map[string]any{"rateID": rate.ID, "value": rate.Value})
		if err := s.Publisher.PublishEvent(ctx, "rate", ev); err != nil {
			l.Error("kafka_publish_error", "type", ev.Type, "error", err)
		}
	}
	l.Info("rate_updated", "value", value)
	return rate, nil
}
