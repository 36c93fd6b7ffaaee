package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName    = errors.New("name must not be empty")
	ErrEmptyMessage = errors.New("message must not be empty")
)

// ValidateName trims name and rejects it when nothing is left.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
