package ontoshop

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no subject of the requested kind exists
var ErrNotFound = errors.New("Entity not found")

// ErrInsufficientStock indicates an order for more units than are in stock
var ErrInsufficientStock = errors.New("Insufficient stock")

// ErrInvalid indicates input that failed validation before any mutation
var ErrInvalid = errors.New("Invalid input")

// ErrConflict indicates a product whose identifier is already taken
var ErrConflict = errors.New("Entity already exists")

// ErrForbidden indicates a caller whose role does not permit the operation
var ErrForbidden = errors.New("Operation not permitted")

// ErrPersist indicates that the graph could not be written back to its file
var ErrPersist = errors.New("Failed to persist graph")

// StockError is returned when an order asks for more than the available stock
type StockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d available, %d requested", e.ProductID, e.Available, e.Requested)
}

// Is matches ErrInsufficientStock
func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// ValidationError names the input field that was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrInvalid
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

// PersistError wraps the failure to save the graph to Path
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist graph to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is matches ErrPersist
func (e *PersistError) Is(target error) bool { return target == ErrPersist }

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
