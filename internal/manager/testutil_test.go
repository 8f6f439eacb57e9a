package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// fakeEngine is a lightweight in-memory engine used for tests.
type fakeEngine struct {
	calls atomic.Int32
	delay time.Duration

	mu     sync.Mutex
	failOn map[device.Device]error
	closed []device.Device
}

func newFakeEngine() *fakeEngine { return &fakeEngine{failOn: map[device.Device]error{}} }

func (f *fakeEngine) Name() string                 { return "fake" }
func (f *fakeEngine) DefaultDevice() device.Device { return device.CPU() }

func (f *fakeEngine) Load(ctx context.Context, req engine.Request) (engine.Instance, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	d := req.Device
	if d.IsZero() {
		d = device.CPU()
	}
	f.mu.Lock()
	err := f.failOn[d]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeInstance{f: f, device: d}, nil
}

func (f *fakeEngine) SanityCheck() engine.SanityReport {
	return engine.SanityReport{Engine: f.Name(), OK: true}
}

func (f *fakeEngine) fail(d device.Device, err error) {
	f.mu.Lock()
	f.failOn[d] = err
	f.mu.Unlock()
}

func (f *fakeEngine) closedDevices() []device.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.Device(nil), f.closed...)
}

type fakeInstance struct {
	f      *fakeEngine
	device device.Device
}

func (i *fakeInstance) Device() device.Device { return i.device }
func (i *fakeInstance) Path() string          { return "/fake" }
func (i *fakeInstance) Close() error {
	i.f.mu.Lock()
	i.f.closed = append(i.f.closed, i.device)
	i.f.mu.Unlock()
	return nil
}

// newTestManager returns a manager backed by a fakeEngine and a MemoryPublisher.
func newTestManager(t *testing.T) (*Manager, *fakeEngine, *MemoryPublisher) {
	t.Helper()
	fe := newFakeEngine()
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{
		Engines:   engine.NewRegistry(fe),
		Publisher: pub,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m, fe, pub
}

func mustRegister(t *testing.T, m *Manager, spec types.ModelSpec) *model.Info {
	t.Helper()
	info, err := m.Register(spec)
	if err != nil {
		t.Fatalf("Register(%+v): %v", spec, err)
	}
	return info
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func key(id string) model.Key { return model.Key{ID: id} }

func vkey(id, v string) model.Key { return model.Key{ID: id, Version: v, HasVersion: true} }

func strptr(s string) *string { return &s }

var errBoom = errors.New("boom")

func engineRegistry(engines ...engine.Engine) *engine.Registry { return engine.NewRegistry(engines...) }
