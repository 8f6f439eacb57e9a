package model

import (
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/translator"
)

// Serving defaults applied by New for absent tuning values.
const (
	DefaultBatchSize     = 1
	DefaultMaxBatchDelay = 100 * time.Millisecond
	DefaultMaxIdleTime   = 60 * time.Second
	DefaultQueueSize     = 1000
)

// Config describes a model to New. A zero BatchSize and nil tuning pointers
// select the defaults; a non-nil pointer to zero is kept as zero.
type Config struct {
	ID      string
	Version *string
	URL     string
	// Engine is empty to use the registry default.
	Engine string

	Application       string
	ModelName         string
	Translator        string
	TranslatorFactory string
	Filters           map[string]string
	Arguments         map[string]any
	Options           map[string]string

	BatchSize     int
	MaxBatchDelay *time.Duration
	MaxIdleTime   *time.Duration
	QueueSize     *int

	// Engines and Translators default to the process registries.
	Engines     *engine.Registry
	Translators *translator.Registry
}

// Key is the comparable identity of a descriptor. HasVersion distinguishes
// an absent version from an empty one.
type Key struct {
	ID         string
	Version    string
	HasVersion bool
}

// String is the display form: id, or id:version when a version is present.
func (k Key) String() string {
	if !k.HasVersion {
		return k.ID
	}
	return k.ID + ":" + k.Version
}

// Info is a model descriptor. Identity and loading options are fixed after
// construction (except a one-time SetID); tuning values are mutable and safe
// for concurrent access.
type Info struct {
	idMu sync.RWMutex
	id   string

	version     *string
	url         string
	engineName  string
	application string
	modelName   string
	translator  string
	factory     string
	filters     map[string]string
	arguments   map[string]any
	options     map[string]string

	engines     *engine.Registry
	translators *translator.Registry

	batchSize     atomic.Int64
	maxBatchDelay atomic.Int64
	maxIdleTime   atomic.Int64
	queueSize     atomic.Int64
	configVersion atomic.Uint64

	mu         sync.RWMutex
	instances  map[device.Device]engine.Instance
	status     Status
	everLoaded bool
	loads      singleflight.Group

	// gen advances on every Close. Flights started under an older gen are
	// stale: they close their instance instead of installing it. pending
	// counts current flights, stale counts the ones Close waits for.
	gen     uint64
	pending int
	stale   int
	idle    *sync.Cond
}

// New validates cfg and returns a PENDING descriptor with an empty registry.
func New(cfg Config) (*Info, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, configErrorf(cfg.ID, "model url is required")
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	delay := valueOr(cfg.MaxBatchDelay, DefaultMaxBatchDelay)
	idle := valueOr(cfg.MaxIdleTime, DefaultMaxIdleTime)
	queue := valueOr(cfg.QueueSize, DefaultQueueSize)
	if err := validateBatch(batchSize, delay); err != nil {
		return nil, &ConfigError{Model: cfg.ID, Err: err}
	}
	if err := validateNonNegative("max idle time", int64(idle)); err != nil {
		return nil, &ConfigError{Model: cfg.ID, Err: err}
	}
	if err := validateNonNegative("queue size", int64(queue)); err != nil {
		return nil, &ConfigError{Model: cfg.ID, Err: err}
	}
	if cfg.Engines == nil {
		cfg.Engines = engine.Default()
	}
	if cfg.Translators == nil {
		cfg.Translators = translator.Default()
	}
	m := &Info{
		id:          cfg.ID,
		url:         cfg.URL,
		engineName:  cfg.Engine,
		application: cfg.Application,
		modelName:   cfg.ModelName,
		translator:  cfg.Translator,
		factory:     cfg.TranslatorFactory,
		filters:     maps.Clone(cfg.Filters),
		arguments:   maps.Clone(cfg.Arguments),
		options:     maps.Clone(cfg.Options),
		engines:     cfg.Engines,
		translators: cfg.Translators,
		instances:   make(map[device.Device]engine.Instance),
		status:      StatusPending,
	}
	m.idle = sync.NewCond(&m.mu)
	if cfg.Version != nil {
		v := *cfg.Version
		m.version = &v
	}
	m.batchSize.Store(int64(batchSize))
	m.maxBatchDelay.Store(int64(delay))
	m.maxIdleTime.Store(int64(idle))
	m.queueSize.Store(int64(queue))
	return m, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// NewFromURL returns a descriptor known only by its URL. The id stays empty
// until SetID.
func NewFromURL(url string) (*Info, error) {
	return New(Config{URL: url})
}

// SetID assigns the id of a descriptor created without one.
func (m *Info) SetID(id string) error {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	if m.id != "" {
		return ErrIdentitySet
	}
	if strings.TrimSpace(id) == "" {
		return configErrorf("", "model id is empty")
	}
	m.id = id
	return nil
}

func (m *Info) ID() string {
	m.idMu.RLock()
	defer m.idMu.RUnlock()
	return m.id
}

// Version returns the version and whether one is set.
func (m *Info) Version() (string, bool) {
	if m.version == nil {
		return "", false
	}
	return *m.version, true
}

func (m *Info) URL() string         { return m.url }
func (m *Info) EngineName() string  { return m.engineName }
func (m *Info) Application() string { return m.application }
func (m *Info) ModelName() string   { return m.modelName }

// Key returns the comparable identity of m.
func (m *Info) Key() Key {
	v, ok := m.Version()
	return Key{ID: m.ID(), Version: v, HasVersion: ok}
}

// Equal reports whether m and o have the same id and version.
func (m *Info) Equal(o *Info) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Key() == o.Key()
}

func (m *Info) String() string { return m.Key().String() }

// Status is PENDING until the first load attempt completes. Close keeps it:
// a descriptor that was READY stays READY with an empty registry, so callers
// deciding whether work can be dispatched must check Devices (or Instance)
// rather than Status alone.
func (m *Info) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// WithDefaultDevice returns d, or the default device of the bound engine
// (the registry default when no engine is bound) when d is zero.
func (m *Info) WithDefaultDevice(d device.Device) (device.Device, error) {
	if !d.IsZero() {
		return d, nil
	}
	e, err := m.engine()
	if err != nil {
		return device.Device{}, err
	}
	return e.DefaultDevice(), nil
}

func (m *Info) engine() (engine.Engine, error) {
	e, err := m.engines.Resolve(m.engineName)
	if err != nil {
		return nil, &ConfigError{Model: m.String(), Err: err}
	}
	return e, nil
}
