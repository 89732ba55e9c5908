package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/pkg/cache"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

const tagsCacheKey = "tags:all"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type TagService struct {
	Repo  *repo.GormRepo
	Cache *cache.Cache
}

func (s *TagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	items, err := cache.GetOrLoad(ctx, s.Cache, tagsCacheKey, s.Repo.GetTags)
	if err != nil {
		logging.FromContext(ctx).Error("tags_list_error", "status", 500, "error", err)
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return items, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.Repo.GetTag(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", id, err)
	}
	return tag, nil
}

func (s *TagService) CreateTag(ctx context.Context, req transport.TagRequest) (*models.Tag, error) {
	l := logging.FromContext(ctx).With("svc", "tag.create")

	tag := &models.Tag{Name: strings.TrimSpace(req.Name), Color: strings.TrimSpace(req.Color)}
	if err := s.check(ctx, tag); err != nil {
		l.Warn("tag_create_failed", "reason", err.Error())
		return nil, err
	}

	if err := s.Repo.CreateTag(ctx, tag); err != nil {
		l.Error("tag_create_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create tag: %w", err)
	}
	s.Cache.Remove(ctx, tagsCacheKey)
	return tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint, req transport.TagRequest) (*models.Tag, error) {
	l := logging.FromContext(ctx).With("svc", "tag.update", "tag_id", id)

	tag, err := s.Repo.GetTag(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", id, err)
	}
	tag.Name = strings.TrimSpace(req.Name)
	tag.Color = strings.TrimSpace(req.Color)
	if err := s.check(ctx, tag); err != nil {
		l.Warn("tag_update_failed", "reason", err.Error())
		return nil, err
	}

	if err := s.Repo.UpdateTag(ctx, tag); err != nil {
		l.Error("tag_update_error", "status", 500, "error", err)
		return nil, fmt.Errorf("update tag: %w", err)
	}
	s.Cache.Remove(ctx, tagsCacheKey)
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("tag %d: %w", id, err)
		}
		logging.FromContext(ctx).Error("tag_delete_error", "status", 500, "tag_id", id, "error", err)
		return fmt.Errorf("delete tag: %w", err)
	}
	s.Cache.Remove(ctx, tagsCacheKey)
	return nil
}

func (s *TagService) check(ctx context.Context, tag *models.Tag) error {
	if tag.Name == "" {
		return newValidationError("name", "Name is required")
	}
	if tag.Color != "" && !hexColor.MatchString(tag.Color) {
		return newValidationError("color", "Color must look like #RRGGBB")
	}
	taken, err := s.Repo.TagNameTaken(ctx, tag.Name, tag.ID)
	if err != nil {
		return fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return fmt.Errorf("tag with name %q: %w", tag.Name, ErrConflict)
	}
	return nil
}
