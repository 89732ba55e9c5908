package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
)

const (
	DefaultPaymentsTake = 5
	MaxPaymentsTake     = 100
)

type PaymentService struct {
	Repo *repo.GormRepo
}

// GetRecentPayments returns the newest take payments, newest first.
func (s *PaymentService) GetRecentPayments(ctx context.Context, take int) ([]models.Payment, error) {
	if take < 1 || take > MaxPaymentsTake {
		return nil, newValidationError("take", fmt.Sprintf("take must be between 1 and %d", MaxPaymentsTake))
	}
	items, err := s.Repo.GetRecentPayments(ctx, take)
	if err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}
	return items, nil
}
