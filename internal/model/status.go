package model

// Status is the coarse readiness of a descriptor.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
)
