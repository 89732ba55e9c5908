package service

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/Skotchmaster/admin_dashboard/internal/repo"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = repo.ErrNotFound
	ErrConflict   = errors.New("already exists")
)

// ValidationError carries one message per offending field and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
