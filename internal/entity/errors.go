package entity

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Concrete errors wrap one of these with %w.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store error")
)

var (
	ErrSectionNotFound     = fmt.Errorf("%w: section not found", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("%w: task not found", ErrNotFound)
	ErrSectionNameRequired = fmt.Errorf("%w: section name is required", ErrValidation)
	ErrSectionNameTaken    = fmt.Errorf("%w: section name already in use", ErrValidation)
	ErrDefaultSection      = fmt.Errorf("%w: default section cannot be deleted", ErrValidation)
	ErrTaskNameRequired    = fmt.Errorf("%w: task name is required", ErrValidation)
	ErrUnknownStatus       = fmt.Errorf("%w: status does not match any section", ErrValidation)
	ErrInvalidDueDate      = fmt.Errorf("%w: invalid due date", ErrValidation)
	ErrInvalidAssignees    = fmt.Errorf("%w: assignees must be an array of strings", ErrValidation)
	ErrNoFallbackSection   = fmt.Errorf("%w: no default section available", ErrStore)
)

// Validationf builds an ad-hoc validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StoreError marks a persistence failure. nil stays nil.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
