// Package apperror defines the errors handlers raise and the single place
// where they are turned into HTTP responses.
package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultMessage is what clients see for anything that is not a known domain error.
const DefaultMessage = "Something went wrong try again later"

// Error is an explicitly raised domain error carrying its HTTP status.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// BadRequest reports missing or invalid client-supplied input.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Msg: msg}
}

// Unauthenticated reports missing, malformed or rejected credentials.
func Unauthenticated(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Msg: msg}
}

// NotFound reports an absent resource, or one the requester does not own.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Msg: msg}
}

// ValidationError collects every field violation found in one validation pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ",")
}

// Add records a violation.
func (e *ValidationError) Add(msg string) {
	e.Violations = append(e.Violations, msg)
}

// OrNil returns e when it holds violations and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// DuplicateKeyError is raised when the store rejects a write on a unique constraint.
type DuplicateKeyError struct {
	Fields []string
	Err    error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("Duplicate value entered for %s field, please choose another value", strings.Join(e.Fields, ","))
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// MalformedIDError is raised when a lookup identifier is not in the expected format.
type MalformedIDError struct {
	Value string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("No record found with Job ID : %s", e.Value)
}
