package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/pkg/events"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchIndex is the full-text index clients are mirrored into.
type SearchIndex interface {
	IndexClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id uint) error
	SearchClients(ctx context.Context, q string, limit int) ([]uint, error)
}

type ClientService struct {
	Repo      *repo.GormRepo
	Index     SearchIndex
	Publisher events.Publisher
}

func (s *ClientService) GetClients(ctx context.Context) ([]models.Client, error) {
	items, err := s.Repo.GetClients(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("clients_list_error", "status", 500, "error", err)
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return items, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.Repo.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", id, err)
	}
	return client, nil
}

func (s *ClientService) CreateClient(ctx context.Context, req transport.ClientRequest) (*models.Client, error) {
	l := logging.FromContext(ctx).With("svc", "client.create")

	client := &models.Client{}
	applyClientRequest(client, req)
	if err := s.validate(ctx, client); err != nil {
		l.Warn("client_create_failed", "status", 400, "reason", "validation", "error", err)
		return nil, err
	}

	if err := s.Repo.CreateClient(ctx, client); err != nil {
		l.Error("client_create_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.index(ctx, client)
	s.publish(ctx, "client_created", client)
	l.Info("client_created", "client_id", client.ID)
	return client, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uint, req transport.ClientRequest) (*models.Client, error) {
	l := logging.FromContext(ctx).With("svc", "client.update", "client_id", id)

	client, err := s.Repo.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", id, err)
	}

	applyClientRequest(client, req)
	if err := s.validate(ctx, client); err != nil {
		l.Warn("client_update_failed", "status", 400, "reason", "validation", "error", err)
		return nil, err
	}

	if err := s.Repo.UpdateClient(ctx, client); err != nil {
		l.Error("client_update_error", "status", 500, "error", err)
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.index(ctx, client)
	s.publish(ctx, "client_updated", client)
	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "client.delete", "client_id", id)

	if err := s.Repo.DeleteClient(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("client %d: %w", id, err)
		}
		l.Error("client_delete_error", "status", 500, "error", err)
		return fmt.Errorf("delete client: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteClient(ctx, id); err != nil {
			l.Error("client_unindex_error", "error", err)
		}
	}
	s.publish(ctx, "client_deleted", &models.Client{ID: id})
	return nil
}

// SearchClients asks the search index first and falls back to a database
// LIKE query when no index is configured or the index fails.
func (s *ClientService) SearchClients(ctx context.Context, q string, limit int) ([]models.Client, error) {
	l := logging.FromContext(ctx).With("svc", "client.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Client{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.Index != nil {
		ids, err := s.Index.SearchClients(ctx, q, limit)
		if err == nil {
			return s.clientsInOrder(ctx, ids)
		}
		l.Error("client_search_index_error", "error", err)
	}

	items, err := s.Repo.SearchClients(ctx, q, limit)
	if err != nil {
		l.Error("client_search_error", "status", 500, "error", err)
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return items, nil
}

// clientsInOrder loads ids and returns them in the order the index ranked them.
// Ids that no longer exist are skipped.
func (s *ClientService) clientsInOrder(ctx context.Context, ids []uint) ([]models.Client, error) {
	found, err := s.Repo.GetClientsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	byID := make(map[uint]models.Client, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]models.Client, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func applyClientRequest(c *models.Client, req transport.ClientRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Email = strings.TrimSpace(req.Email)
	c.Balance = req.Balance
}

func (s *ClientService) validate(ctx context.Context, c *models.Client) error {
	verr := &ValidationError{Fields: map[string]string{}}

	if c.Name == "" {
		verr.Fields["name"] = "Name is required"
	}
	if c.Email == "" {
		verr.Fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(c.Email); err != nil {
		verr.Fields["email"] = "Email is not a valid address"
	}
	if c.Balance < 0 {
		verr.Fields["balance"] = "Balance cannot be negative"
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	taken, err := s.Repo.ClientFieldTaken(ctx, "name", c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("check client name: %w", err)
	}
	if taken {
		verr.Fields["name"] = "Client with this name already exists"
	}
	taken, err = s.Repo.ClientFieldTaken(ctx, "email", c.Email, c.ID)
	if err != nil {
		return fmt.Errorf("check client email: %w", err)
	}
	if taken {
		verr.Fields["email"] = "Client with this email already exists"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (s *ClientService) index(ctx context.Context, c *models.Client) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexClient(ctx, c); err != nil {
		logging.FromContext(ctx).Error("client_index_error", "client_id", c.ID, "error", err)
	}
}

func (s *ClientService) publish(ctx context.Context, eventType string, c *models.Client) {
	if s.Publisher == nil {
		return
	}
	data := map[string]any{"clientID": c.ID}
	if c.Name != "" {
		data["name"] = c.Name
	}
	if err := s.Publisher.PublishEvent(ctx, fmt.Sprint(c.ID), events.New(eventType, data)); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "type", eventType, "error", err)
	}
}
