package manager

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/model"
	"modelreg/internal/translator"
	"modelreg/pkg/types"
)

type Manager struct {
	mu      sync.RWMutex
	models  map[model.Key]*entry
	lastErr string

	opsMu sync.Mutex
	ops   map[string]*operation

	engines          *engine.Registry
	translators      *translator.Registry
	defaultDevices   []device.Device
	loadTimeout      time.Duration
	maxParallelLoads int
	opRetention      time.Duration
	publisher        EventPublisher

	loadsTotal atomic.Uint64
	startTime  time.Time
}

// New returns a manager over the process engine and translator registries.
func New() *Manager { return NewWithConfig(ManagerConfig{}) }

// SetEventPublisher replaces the event sink. nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

func (m *Manager) publish(name string, key model.Key, fields map[string]any) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	if fields == nil {
		fields = map[string]any{}
	}
	p.Publish(Event{Name: name, Model: key, At: time.Now(), Fields: fields})
}

// Engines returns the engine registry models are loaded with.
func (m *Manager) Engines() *engine.Registry { return m.engines }

// Register builds a descriptor from spec and adds it without loading it. The
// id is inferred from the URL when spec.ID is empty.
func (m *Manager) Register(spec types.ModelSpec) (*model.Info, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = model.InferModelNameFromURL(spec.URL)
	}
	devs, err := parseDevices(id, spec.Devices)
	if err != nil {
		return nil, err
	}
	info, err := model.New(model.Config{
		ID:                id,
		Version:           spec.Version,
		URL:               spec.URL,
		Engine:            spec.Engine,
		Application:       spec.Application,
		ModelName:         spec.ModelName,
		Translator:        spec.Translator,
		TranslatorFactory: spec.TranslatorFactory,
		Filters:           spec.Filters,
		Arguments:         spec.Arguments,
		Options:           spec.Options,
		BatchSize:         spec.BatchSize,
		MaxBatchDelay:     millis(spec.MaxBatchDelayMS),
		MaxIdleTime:       millis(spec.MaxIdleTimeMS),
		QueueSize:         spec.QueueSize,
		Engines:           m.engines,
		Translators:       m.translators,
	})
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, &model.ConfigError{Err: errEmptyID(spec.URL)}
	}
	key := info.Key()

	m.mu.Lock()
	if _, ok := m.models[key]; ok {
		m.mu.Unlock()
		return nil, modelExistsError{key: key}
	}
	m.models[key] = &entry{info: info, devices: devs, pool: poolConfigOf(info)}
	n := len(m.models)
	m.mu.Unlock()

	modelsGauge.Set(float64(n))
	log.Info().Str("model", key.String()).Str("url", info.URL()).Str("engine", info.EngineName()).Msg("model registered")
	m.publish(EventRegister, key, map[string]any{"url": info.URL()})
	return info, nil
}

func parseDevices(id string, names []string) ([]device.Device, error) {
	out := make([]device.Device, 0, len(names))
	for _, n := range names {
		d, err := device.Parse(n)
		if err != nil {
			return nil, &model.ConfigError{Model: id, Err: err}
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *Manager) entry(key model.Key) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.models[key]
	if !ok {
		return nil, ErrModelNotFound(key.String())
	}
	return e, nil
}

// acquire is entry for callers that go on to load: the returned entry's
// loads counter is held until the caller calls e.loads.Done, and Unregister
// waits for it before closing the descriptor.
func (m *Manager) acquire(key model.Key) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.models[key]
	if !ok {
		return nil, ErrModelNotFound(key.String())
	}
	e.loads.Add(1)
	return e, nil
}

// Get returns the descriptor registered under key.
func (m *Manager) Get(key model.Key) (*model.Info, error) {
	e, err := m.entry(key)
	if err != nil {
		return nil, err
	}
	return e.info, nil
}

// Models returns the registered descriptors ordered by display name.
func (m *Manager) Models() []*model.Info {
	m.mu.RLock()
	out := make([]*model.Info, 0, len(m.models))
	for _, e := range m.models {
		out = append(out, e.info)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Ready reports whether any model is READY.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.models {
		if e.info.Status() == model.StatusReady {
			return true
		}
	}
	return false
}

// millis converts an optional millisecond count, keeping nil as nil.
func millis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}
