package types

// ModelView is the API representation of a registered model.
type ModelView struct {
	// example: resnet18
	ID string `json:"id" example:"resnet18"`
	// Present only when the model is versioned.
	// example: 1.0
	Version *string `json:"version,omitempty" example:"1.0"`
	// example: file:///opt/models/resnet18/
	URL string `json:"url" example:"file:///opt/models/resnet18/"`
	// example: file
	Engine string `json:"engine,omitempty" example:"file"`
	// PENDING, READY or FAILED.
	// example: READY
	Status string `json:"status" example:"READY"`
	// Devices with a loaded instance.
	// example: ["cpu"]
	Devices []string `json:"devices" example:"cpu"`
	// example: 1
	BatchSize int `json:"batch_size" example:"1"`
	// example: 100
	MaxBatchDelayMS int64 `json:"max_batch_delay_ms" example:"100"`
	// example: 60000
	MaxIdleTimeMS int64 `json:"max_idle_time_ms" example:"60000"`
	// example: 1000
	QueueSize int `json:"queue_size" example:"1000"`
	// Increases on every configuration change.
	// example: 0
	ConfigVersion uint64 `json:"config_version" example:"0"`
	// Config version last propagated to the worker pool.
	// example: 0
	AppliedConfigVersion uint64 `json:"applied_config_version" example:"0"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []ModelView `json:"models"`
}

// RegisterRequest is the body of POST /models.
type RegisterRequest struct {
	ModelSpec
	// When false the load runs in the background and an operation id is returned.
	// example: true
	Synchronous *bool `json:"synchronous,omitempty" example:"true"`
}

// RegisterResponse is returned by POST /models.
type RegisterResponse struct {
	// example: Model "resnet18" registered.
	Status string `json:"status" example:"Model \"resnet18\" registered."`
	// Set for asynchronous registrations.
	// example: 5b0c7a8e-3f5d-4d55-9a55-1f3c5a1f0e2b
	OperationID string `json:"operation_id,omitempty" example:"5b0c7a8e-3f5d-4d55-9a55-1f3c5a1f0e2b"`
	Model *ModelView `json:"model,omitempty"`
}

// ConfigureRequest is the body of PUT /models/{id}. Nil fields are left as is.
type ConfigureRequest struct {
	// example: 8
	BatchSize *int `json:"batch_size,omitempty" example:"8"`
	// example: 50
	MaxBatchDelayMS *int64 `json:"max_batch_delay_ms,omitempty" example:"50"`
	// example: 120000
	MaxIdleTimeMS *int64 `json:"max_idle_time_ms,omitempty" example:"120000"`
	// example: 500
	QueueSize *int `json:"queue_size,omitempty" example:"500"`
	// Additional devices to load on.
	// example: ["gpu1"]
	Devices []string `json:"devices,omitempty"`
}

// OperationStatus reports a background registration.
type OperationStatus struct {
	// example: 5b0c7a8e-3f5d-4d55-9a55-1f3c5a1f0e2b
	ID string `json:"id" example:"5b0c7a8e-3f5d-4d55-9a55-1f3c5a1f0e2b"`
	// example: resnet18:1.0
	Model string `json:"model" example:"resnet18:1.0"`
	// pending, done or failed.
	// example: done
	State string `json:"state" example:"done"`
	Error string `json:"error,omitempty"`
	// example: 1700000000
	StartedUnix int64 `json:"started_unix" example:"1700000000"`
	// example: 1700000005
	FinishedUnix int64 `json:"finished_unix,omitempty" example:"1700000005"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Models []ModelView `json:"models"`
	// Number of models with status READY.
	// example: 1
	ReadyCount int `json:"ready_count" example:"1"`
	// Number of models with status FAILED.
	// example: 0
	FailedCount int `json:"failed_count" example:"0"`
	// Operations still running in the background.
	// example: 0
	PendingOperations int `json:"pending_operations" example:"0"`
	// Last load error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Engines known to the server.
	// example: ["file","llama","llama-server"]
	Engines []string `json:"engines"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total successful loads.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	// example: Model "resnet18" unregistered.
	Status string `json:"status" example:"Model \"resnet18\" unregistered."`
}
