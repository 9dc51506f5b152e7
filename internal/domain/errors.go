package domain

import "fmt"

// ValidationError reports malformed or missing input. The operation is
// rejected before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a named field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StateTransitionError reports a purchase order status change not permitted
// by the transition table. The order is left unmodified.
type StateTransitionError struct {
	From POStatus
	To   POStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition purchase order from %q to %q", e.From, e.To)
}

// NegativeStockError reports an operation that would drive on_hand below
// zero. The whole operation is rejected, never clamped.
type NegativeStockError struct {
	ComponentID int64
	Current     int
	Requested   int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("component %d: cannot remove %d units, only %d on hand",
		e.ComponentID, e.Requested, e.Current)
}

// NotFoundError reports a missing entity reference.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NewNotFoundError builds a NotFoundError for the given entity and id.
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
