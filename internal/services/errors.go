package services

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable problem with one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func requiredField(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// DuplicateDocumentError reports an active house already using the number.
type DuplicateDocumentError struct {
	HouseNumber string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("house document %q already exists", e.HouseNumber)
}

// NotFoundError reports a referenced document that is absent or deleted.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UnresolvedReferenceError reports a directory code with no active match.
type UnresolvedReferenceError struct {
	Field string
	Code  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: no active entry for code %q", e.Field, e.Code)
}

// InternalError wraps a storage failure. Only Op is meant for users; the
// cause stays available through Unwrap for diagnostics.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// internal wraps err as an InternalError unless it already is a domain error.
func internal(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var (
		validation *ValidationError
		duplicate  *DuplicateDocumentError
		notFound   *NotFoundError
		unresolved *UnresolvedReferenceError
		internalE  *InternalError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &notFound) ||
		errors.As(err, &unresolved) ||
		errors.As(err, &internalE)
}
