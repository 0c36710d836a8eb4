package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when an operation references an identifier absent
// from the current collection. It gets its own kind so callers can map it to
// a 404 instead of lumping it with validation failures.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string {
	return err.Resource + " not found"
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// PermissionError is returned when the acting principal lacks a required
// capability.
type PermissionError struct {
	Capability string
}

func NewPermissionError(capability string) error {
	return &PermissionError{Capability: capability}
}

func (err PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s capability required", err.Capability)
}

func IsPermissionDenied(err error) bool {
	_, ok := errors.Cause(err).(*PermissionError)
	return ok
}

// NotImplementedError marks an operation that is declared in a service
// contract but deliberately left unimplemented (a product scope boundary,
// not a bug).
type NotImplementedError struct {
	Op string
}

func NewNotImplementedError(op string) error {
	return &NotImplementedError{Op: op}
}

func (err NotImplementedError) Error() string {
	return err.Op + " is not implemented"
}

func IsNotImplemented(err error) bool {
	_, ok := errors.Cause(err).(*NotImplementedError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
