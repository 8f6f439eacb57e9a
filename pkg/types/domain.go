package types

// ModelSpec describes one model to register. It is the shape of a `models:`
// entry in the config file and the body of POST /models.
type ModelSpec struct {
	// Model identifier. Inferred from the URL when empty.
	// example: resnet18
	ID string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty" example:"resnet18"`
	// Optional version. Absent and empty are different versions.
	// example: 1.0
	Version *string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty" example:"1.0"`
	// Source location of the model artifacts.
	// example: file:///opt/models/resnet18/
	URL string `json:"url" yaml:"url" toml:"url" example:"file:///opt/models/resnet18/"`
	// Engine name; empty selects the server default.
	// example: file
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty" example:"file"`
	// Application tag passed to the engine.
	// example: cv/image_classification
	Application string `json:"application,omitempty" yaml:"application,omitempty" toml:"application,omitempty" example:"cv/image_classification"`
	// Explicit artifact name inside the model directory.
	ModelName string `json:"model_name,omitempty" yaml:"model_name,omitempty" toml:"model_name,omitempty"`
	// Registered translator name.
	// example: passthrough
	Translator string `json:"translator,omitempty" yaml:"translator,omitempty" toml:"translator,omitempty" example:"passthrough"`
	// Registered translator factory name.
	TranslatorFactory string `json:"translator_factory,omitempty" yaml:"translator_factory,omitempty" toml:"translator_factory,omitempty"`

	Filters   map[string]string `json:"filters,omitempty" yaml:"filters,omitempty" toml:"filters,omitempty"`
	Arguments map[string]any    `json:"arguments,omitempty" yaml:"arguments,omitempty" toml:"arguments,omitempty"`
	Options   map[string]string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`

	// Batch size; 0 selects the default (1).
	// example: 4
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty" toml:"batch_size,omitempty" example:"4"`
	// Maximum batch aggregation delay in milliseconds; absent selects the
	// default (100), an explicit 0 disables the wait.
	// example: 100
	MaxBatchDelayMS *int64 `json:"max_batch_delay_ms,omitempty" yaml:"max_batch_delay_ms,omitempty" toml:"max_batch_delay_ms,omitempty" example:"100"`
	// Worker idle time in milliseconds; absent selects the default (60000).
	// example: 60000
	MaxIdleTimeMS *int64 `json:"max_idle_time_ms,omitempty" yaml:"max_idle_time_ms,omitempty" toml:"max_idle_time_ms,omitempty" example:"60000"`
	// Worker queue size; absent selects the default (1000).
	// example: 1000
	QueueSize *int `json:"queue_size,omitempty" yaml:"queue_size,omitempty" toml:"queue_size,omitempty" example:"1000"`

	// Devices to load on at registration, e.g. ["cpu","gpu0","nc1"].
	// Empty loads on the engine default device.
	// example: ["gpu0","gpu1"]
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty" toml:"devices,omitempty"`
}
