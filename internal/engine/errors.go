package engine

import "errors"

// dependencyUnavailableError signals a missing external runtime (binary,
// shared library, build tag) so callers can report 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}
