package apperrors

import (
	"encoding/json"
	"fmt"
)

// ValidationErr signals malformed or semantically invalid input, it is always
// mapped to a 4xx response and never retried
type ValidationErr struct {
	field   string
	message string
}

func (e *ValidationErr) Error() string {
	return e.message
}

// Field returns the name of the offending field
func (e *ValidationErr) Field() string {
	return e.field
}

func (e *ValidationErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}{Field: e.field, Message: e.message})
}

func NewValidationErr(field string, msg string) error {
	return &ValidationErr{
		field:   field,
		message: msg,
	}
}

// PersistenceErr wraps a store failure, the in-flight transaction is rolled
// back before it is surfaced
type PersistenceErr struct {
	cause error
}

func (e *PersistenceErr) Error() string {
	return fmt.Sprintf("database error - %v", e.cause)
}

func (e *PersistenceErr) Unwrap() error {
	return e.cause
}

func NewPersistenceErr(cause error) error {
	return &PersistenceErr{cause: cause}
}
