package manager

import (
	"time"

	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/model"
	"modelreg/internal/translator"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxParallelLoads = 4
	defaultOpRetention      = 15 * time.Minute
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Engines and Translators default to the process registries.
	Engines     *engine.Registry
	Translators *translator.Registry
	// DefaultDevices are loaded when neither the call nor the model names any.
	// Empty means the engine default device.
	DefaultDevices []device.Device
	// LoadTimeout bounds how long Load waits per call; 0 waits until done.
	// The engine call is never cancelled by it.
	LoadTimeout time.Duration
	// MaxParallelLoads caps concurrent device loads within one Load call.
	MaxParallelLoads int
	// OpRetention is how long finished background operations stay queryable.
	OpRetention time.Duration
	Publisher   EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		models:         make(map[model.Key]*entry),
		ops:            make(map[string]*operation),
		engines:        cfg.Engines,
		translators:    cfg.Translators,
		defaultDevices: append([]device.Device(nil), cfg.DefaultDevices...),
		loadTimeout:    cfg.LoadTimeout,
		publisher:      cfg.Publisher,
		startTime:      time.Now(),
	}
	// Apply defaults if unset
	if m.engines == nil {
		m.engines = engine.Default()
	}
	if m.translators == nil {
		m.translators = translator.Default()
	}
	if cfg.MaxParallelLoads <= 0 {
		m.maxParallelLoads = defaultMaxParallelLoads
	} else {
		m.maxParallelLoads = cfg.MaxParallelLoads
	}
	if cfg.OpRetention <= 0 {
		m.opRetention = defaultOpRetention
	} else {
		m.opRetention = cfg.OpRetention
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	return m
}
