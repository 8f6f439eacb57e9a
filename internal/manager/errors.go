package manager

import (
	"errors"

	"modelreg/internal/model"
)

type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound returns an error when a requested model is not registered.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

type modelExistsError struct{ key model.Key }

func (e modelExistsError) Error() string { return "model already registered: " + e.key.String() }

// IsModelExists reports whether a registration collided with an existing model.
func IsModelExists(err error) bool {
	var e modelExistsError
	return errors.As(err, &e)
}

type operationNotFoundError struct{ id string }

func (e operationNotFoundError) Error() string { return "operation not found: " + e.id }

// IsOperationNotFound reports whether an operation id is unknown or expired.
func IsOperationNotFound(err error) bool {
	var e operationNotFoundError
	return errors.As(err, &e)
}

func errEmptyID(url string) error { return errors.New("cannot infer model id from url " + url) }
