package domain

import (
	"fmt"
	"strings"
)

// ValidationError is a user-correctable problem with the registration form.
// No backend call is made when one is returned.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrMissingModality = &ValidationError{Code: "missing-modality", Message: "choose a modality"}
	ErrMissingSubject  = &ValidationError{Code: "missing-subject", Message: "provide a mouse ID"}
	ErrEmptyQueue      = &ValidationError{Code: "empty-queue", Message: "add at least one file for this mouse experiment"}
)

// TransportError reports a failed backend call during registration.
// The queue is left untouched when one is returned.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnsupportedFileTypeError lists the candidates refused by the extension policy.
type UnsupportedFileTypeError struct {
	Names []string
}

func (e *UnsupportedFileTypeError) Error() string {
	return "Rejected unsupported file types: " + strings.Join(e.Names, ", ")
}
