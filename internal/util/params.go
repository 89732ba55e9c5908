package util

import (
	"errors"
	"strconv"
)

var ErrInvalidID = errors.New("id must be a positive integer")

func ParseIntDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func ParseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, ErrInvalidID
	}
	return uint(v), nil
}
