package manager

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"modelreg/internal/device"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// Load loads the model on each device concurrently. With no devices it uses
// the devices the model was registered with, then the manager defaults, then
// the engine default device. The first error is returned after every device
// has been attempted.
//
// LoadTimeout, like ctx, only bounds the wait: loads still running when it
// expires complete in the background and install their instances. A model
// unregistered meanwhile has those instances closed instead.
func (m *Manager) Load(ctx context.Context, key model.Key, devices ...device.Device) error {
	e, err := m.acquire(key)
	if err != nil {
		return err
	}
	defer e.loads.Done()
	devices = m.devicesFor(e, devices)
	if m.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.loadTimeout)
		defer cancel()
	}

	var g errgroup.Group
	g.SetLimit(m.maxParallelLoads)
	for _, d := range devices {
		g.Go(func() error { return m.loadDevice(ctx, e.info, d) })
	}
	return g.Wait()
}

func (m *Manager) loadDevice(ctx context.Context, info *model.Info, d device.Device) error {
	key := info.Key()
	m.publish(EventLoadStart, key, map[string]any{"device": d.Name()})
	start := time.Now()
	err := info.Load(ctx, d)
	if err != nil {
		deviceLoadsTotal.WithLabelValues("error").Inc()
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		log.Warn().Err(err).Str("model", key.String()).Str("device", d.Name()).Msg("load failed")
		m.publish(EventLoadError, key, map[string]any{"device": d.Name(), "error": err.Error()})
		return err
	}
	deviceLoadsTotal.WithLabelValues("ok").Inc()
	m.loadsTotal.Add(1)
	m.publish(EventLoadReady, key, map[string]any{"device": d.Name(), "took_ms": time.Since(start).Milliseconds()})
	return nil
}

func (m *Manager) devicesFor(e *entry, devices []device.Device) []device.Device {
	switch {
	case len(devices) > 0:
		return devices
	case len(e.devices) > 0:
		return e.devices
	case len(m.defaultDevices) > 0:
		return m.defaultDevices
	}
	// zero device: the descriptor resolves its engine default
	return []device.Device{{}}
}

// LoadAsync starts Load in the background and returns an operation id to
// poll with Operation.
func (m *Manager) LoadAsync(key model.Key, devices ...device.Device) (string, error) {
	if _, err := m.entry(key); err != nil {
		return "", err
	}
	op := &operation{id: uuid.NewString(), model: key, state: OpPending, started: time.Now()}
	m.opsMu.Lock()
	m.pruneOpsLocked(op.started)
	m.ops[op.id] = op
	m.opsMu.Unlock()

	go func() {
		// Detached: the operation outlives the request that started it.
		err := m.Load(context.Background(), key, devices...)
		m.opsMu.Lock()
		defer m.opsMu.Unlock()
		op.finished = time.Now()
		if err != nil {
			op.state = OpFailed
			op.err = err.Error()
			return
		}
		op.state = OpDone
	}()
	return op.id, nil
}

// Operation reports the state of a background load.
func (m *Manager) Operation(id string) (types.OperationStatus, error) {
	m.opsMu.Lock()
	defer m.opsMu.Unlock()
	op, ok := m.ops[id]
	if !ok {
		return types.OperationStatus{}, operationNotFoundError{id: id}
	}
	st := types.OperationStatus{
		ID:          op.id,
		Model:       op.model.String(),
		State:       string(op.state),
		Error:       op.err,
		StartedUnix: op.started.Unix(),
	}
	if !op.finished.IsZero() {
		st.FinishedUnix = op.finished.Unix()
	}
	return st, nil
}

func (m *Manager) pendingOps() int {
	m.opsMu.Lock()
	defer m.opsMu.Unlock()
	n := 0
	for _, op := range m.ops {
		if op.state == OpPending {
			n++
		}
	}
	return n
}

func (m *Manager) pruneOpsLocked(now time.Time) {
	for id, op := range m.ops {
		if op.state != OpPending && now.Sub(op.finished) > m.opRetention {
			delete(m.ops, id)
		}
	}
}
