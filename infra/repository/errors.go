// Package repository provides shared infrastructure for the GORM-backed
// store implementations.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/duitku/duitku/pkg/domain"
	"gorm.io/gorm"
)

// TranslateError maps storage-layer errors onto the domain taxonomy so
// services and handlers never match on driver errors.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

// isUniqueViolation recognizes Postgres unique violations (SQLSTATE 23505)
// without binding to a driver error type.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value")
}
