package model

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"modelreg/internal/device"
	"modelreg/internal/engine"
)

// Load installs an instance of the model on d (the default device when d is
// zero). It is a no-op when d already has an instance. Concurrent loads of the
// same device share one engine call; loads of different devices run
// independently.
//
// ctx bounds only the wait. The engine call itself is not cancelled when ctx
// ends: it runs to completion and installs its instance, unless Close ran in
// the meantime, in which case the instance is closed instead.
func (m *Info) Load(ctx context.Context, d device.Device) error {
	eng, err := m.engine()
	if err != nil {
		m.markFailed()
		return err
	}
	if d.IsZero() {
		d = eng.DefaultDevice()
	}
	if m.loaded(d) {
		return nil
	}
	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()
	detached := context.WithoutCancel(ctx)
	ch := m.loads.DoChan(flightKey(d, gen), func() (any, error) {
		return nil, m.load(detached, eng, d, gen)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flightKey must be injective over devices; Name is not ("gpu1" id 0 and
// "gpu" id 10 both print gpu10). The generation keeps a load started after
// Close from joining a flight that Close already made stale.
func flightKey(d device.Device, gen uint64) string {
	return d.Type + "/" + strconv.Itoa(d.ID) + "@" + strconv.FormatUint(gen, 10)
}

func (m *Info) load(ctx context.Context, eng engine.Engine, d device.Device, gen uint64) error {
	if !m.beginFlight(gen) {
		return &LoadError{Model: m.String(), Device: d, Err: ErrClosedDuringLoad}
	}
	defer m.endFlight(gen)

	// A flight that started after another one installed d finds it here.
	if m.loaded(d) {
		return nil
	}
	req, err := m.buildRequest(eng, d)
	if err != nil {
		m.markFailed()
		return err
	}
	log.Info().Str("model", m.String()).Str("url", m.url).Str("engine", eng.Name()).
		Stringer("device", d).Msg("loading model")

	start := time.Now()
	inst, err := eng.Load(ctx, req)
	loadDuration.WithLabelValues(eng.Name()).Observe(time.Since(start).Seconds())
	loadsTotal.WithLabelValues(eng.Name(), result(err)).Inc()
	if err == nil && inst == nil {
		err = errors.New("engine returned no instance")
	}
	if err != nil {
		m.markFailed()
		log.Error().Err(err).Str("model", m.String()).Stringer("device", d).Msg("model load failed")
		return &LoadError{Model: m.String(), Device: d, Err: err}
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		cerr := inst.Close()
		instanceClosesTotal.WithLabelValues(result(cerr)).Inc()
		log.Warn().Err(cerr).Str("model", m.String()).Stringer("device", d).
			Msg("model closed while loading; discarding instance")
		return &LoadError{Model: m.String(), Device: d, Err: ErrClosedDuringLoad}
	}
	m.instances[d] = inst
	m.status = StatusReady
	m.everLoaded = true
	m.mu.Unlock()
	log.Info().Str("model", m.String()).Stringer("device", d).Dur("took", time.Since(start)).Msg("model loaded")
	return nil
}

// beginFlight registers a flight of generation gen. It fails when Close has
// run since the caller sampled gen.
func (m *Info) beginFlight(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	m.pending++
	return true
}

func (m *Info) endFlight(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen {
		m.pending--
		return
	}
	m.stale--
	if m.stale == 0 {
		m.idle.Broadcast()
	}
}

func (m *Info) buildRequest(eng engine.Engine, d device.Device) (engine.Request, error) {
	req := engine.Request{
		ModelURL:    m.url,
		ModelName:   m.modelName,
		Engine:      eng.Name(),
		Application: m.application,
		Filters:     maps.Clone(m.filters),
		Arguments:   maps.Clone(m.arguments),
		Options:     maps.Clone(m.options),
	}
	engine.Bind(eng, &req, d)
	if m.BatchSize() > 1 {
		req.SetArgument(engine.ArgBatchifier, engine.BatchifierStack)
	}
	if m.translator != "" {
		t, err := m.translators.Translator(m.translator)
		if err != nil {
			return req, &ConfigError{Model: m.String(), Err: err}
		}
		req.Translator = t
	}
	if m.factory != "" {
		f, err := m.translators.Factory(m.factory)
		if err != nil {
			return req, &ConfigError{Model: m.String(), Err: err}
		}
		req.TranslatorFactory = f
	}
	return req, nil
}

// markFailed records a failed attempt. A descriptor that ever had an
// instance keeps its status.
func (m *Info) markFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.everLoaded {
		m.status = StatusFailed
	}
}

func (m *Info) loaded(d device.Device) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.instances[d]
	return ok
}

// Instance returns the instance installed on d (the default device when d is
// zero), or a NotLoadedError.
func (m *Info) Instance(d device.Device) (engine.Instance, error) {
	d, err := m.WithDefaultDevice(d)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	inst, ok := m.instances[d]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotLoadedError{Model: m.String(), Device: d}
	}
	return inst, nil
}

// Devices lists the devices holding an instance, ordered.
func (m *Info) Devices() []device.Device {
	m.mu.RLock()
	out := make([]device.Device, 0, len(m.instances))
	for d := range m.instances {
		out = append(out, d)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b device.Device) int {
		switch {
		case device.Less(a, b):
			return -1
		case device.Less(b, a):
			return 1
		}
		return 0
	})
	return out
}

// ModelDir returns the artifact directory of the first installed instance.
func (m *Info) ModelDir() (string, error) {
	devs := m.Devices()
	if len(devs) == 0 {
		return "", &NotLoadedError{Model: m.String()}
	}
	inst, err := m.Instance(devs[0])
	if err != nil {
		return "", err
	}
	return inst.Path(), nil
}

// Close closes every installed instance and empties the registry. Every
// instance is attempted; failures are logged and joined. Status is kept.
//
// Loads in flight when Close is called are waited for; their instances are
// closed rather than installed. Loads started after Close returns install
// normally.
func (m *Info) Close() error {
	m.mu.Lock()
	m.gen++
	m.stale += m.pending
	m.pending = 0
	insts := m.instances
	m.instances = make(map[device.Device]engine.Instance)
	for m.stale > 0 {
		m.idle.Wait()
	}
	m.mu.Unlock()
	if len(insts) == 0 {
		return nil
	}
	log.Debug().Str("model", m.String()).Int("instances", len(insts)).Msg("closing model")
	var errs []error
	for d, inst := range insts {
		err := inst.Close()
		instanceClosesTotal.WithLabelValues(result(err)).Inc()
		if err != nil {
			log.Warn().Err(err).Str("model", m.String()).Stringer("device", d).Msg("close instance failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
