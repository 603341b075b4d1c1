package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates bad input shape or range.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates stock would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientPoints indicates a redemption larger than the balance.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrConflict indicates a unique constraint violation.
	ErrConflict = errors.New("conflict")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (have %d, need %d)", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InsufficientPointsError struct {
	CustomerID int64
	Balance    int
	Requested  int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points for customer %d (have %d, need %d)", e.CustomerID, e.Balance, e.Requested)
}

func (e *InsufficientPointsError) Is(target error) bool { return target == ErrInsufficientPoints }

type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
