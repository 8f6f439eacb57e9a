package manager

import (
	"time"

	"modelreg/internal/model"
)

// Event names published by the manager.
const (
	EventRegister      = "register"
	EventLoadStart     = "load_start"
	EventLoadReady     = "load_ready"
	EventLoadError     = "load_error"
	EventConfigUpdated = "config_updated"
	EventUnregister    = "unregister"
)

// Event is one lifecycle step of a registered model. Fields carry
// event-specific details such as the device or the error text.
type Event struct {
	Name   string
	Model  model.Key
	At     time.Time
	Fields map[string]any
}

// EventPublisher receives manager events synchronously from the goroutine
// that caused them, so Publish must return quickly.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
