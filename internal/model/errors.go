package model

import (
	"errors"
	"fmt"

	"modelreg/internal/device"
)

// ErrIdentitySet is returned by SetID when the descriptor already has an id.
var ErrIdentitySet = errors.New("model id already set")

// ErrClosedDuringLoad is wrapped by the LoadError of a load that completed
// after Close. The new instance is closed rather than installed.
var ErrClosedDuringLoad = errors.New("model closed while loading")

// ErrInvalidTuning wraps rejected tuning values.
var ErrInvalidTuning = errors.New("invalid tuning value")

// ConfigError is a malformed descriptor configuration: unknown engine or
// translator, invalid tuning values. Never transient.
type ConfigError struct {
	Model string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Model == "" {
		return "model config: " + e.Err.Error()
	}
	return fmt.Sprintf("model %s config: %v", e.Model, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// LoadError is an engine failure for one device of one model.
type LoadError struct {
	Model  string
	Device device.Device
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s on %s: %v", e.Model, e.Device, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is (or wraps) a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// NotLoadedError is returned by Instance for a device with no installed instance.
type NotLoadedError struct {
	Model  string
	Device device.Device
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("model %q has not been loaded yet on %s", e.Model, e.Device)
}

// IsNotLoaded reports whether err is (or wraps) a NotLoadedError.
func IsNotLoaded(err error) bool {
	var nl *NotLoadedError
	return errors.As(err, &nl)
}

func configErrorf(model, format string, args ...any) error {
	return &ConfigError{Model: model, Err: fmt.Errorf(format, args...)}
}
