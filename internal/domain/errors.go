package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("notification not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// BackendError carries a persistence failure through the service boundary.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return e.Op + ": backend error"
	}
	return e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrInvalidInput }

func InvalidInput(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
