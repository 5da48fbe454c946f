package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
)

// IsDuplicate reports whether err is a unique-constraint violation. Covers
// MySQL (1062 "Duplicate entry") and sqlite ("UNIQUE constraint failed").
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Translate maps store errors to the apperr taxonomy. what names the entity
// for the message ("product", "order", ...).
func Translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", what)
	case IsDuplicate(err):
		return apperr.Conflict("%s already exists", what)
	default:
		return apperr.Integrity(err, "querying %s", what)
	}
}
