package domain

import "fmt"

// ValidationError reports a missing or invalid field on order creation.
// Index is set when the field lives inside the line list.
type ValidationError struct {
	Field string
	Index int
}

func (e *ValidationError) Error() string {
	switch e.Field {
	case "items.name", "items.quantity":
		return fmt.Sprintf("invalid order: items[%d]: missing or invalid %s", e.Index, e.Field[len("items."):])
	}
	return "invalid order: missing or invalid " + e.Field
}

// NotFoundError reports an unknown order id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "order " + e.ID + " not found"
}

// InvalidTransitionError reports a status change that is not an edge of
// the lifecycle graph. It carries both labels so the caller can render
// a precise message.
type InvalidTransitionError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s (%s) to %s (%s)",
		e.Current, StatusLabel(e.Current), e.Requested, StatusLabel(e.Requested))
}

// StorageError wraps an unexpected fault in a store backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
