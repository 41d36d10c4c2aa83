package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateStart     = errors.New("a rate schedule with this start already exists")
	ErrInvalidBrackets    = errors.New("tonnage brackets must cover 0 and up without gaps or overlaps")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrFormNotEditable    = errors.New("form can no longer be edited")
)

// notFound maps gorm's missing record error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}
