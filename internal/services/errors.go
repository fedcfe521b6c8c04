package services

import "fmt"

// NotFoundError signals that a referenced resource does not exist.
// Boundaries map it to 404.
type NotFoundError struct {
	Resource string
	Field    string
	Value    interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

// DuplicateResourceError signals a uniqueness violation. Boundaries map it
// to 409.
type DuplicateResourceError struct {
	Resource string
	Field    string
	Value    interface{}
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("%s already exists with %s: %v", e.Resource, e.Field, e.Value)
}

// ValidationError carries one human-readable message per invalid field.
// Boundaries map it to 400 with a fieldErrors object.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.FieldErrors))
}

// InvalidArgumentError signals a malformed argument such as an unknown
// enum literal. Boundaries map it to 400.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}
