package repo

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type GormRepo struct {
	DB *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
