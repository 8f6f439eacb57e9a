package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/translator"
)

// countingEngine records Load calls. Loads block on gate when it is set and
// fail for devices listed in fail.
type countingEngine struct {
	name  string
	def   device.Device
	calls atomic.Int32
	gate  chan struct{}

	mu       sync.Mutex
	fail     map[device.Device]error
	requests []engine.Request
}

func newCountingEngine(name string) *countingEngine {
	return &countingEngine{name: name, def: device.CPU(), fail: map[device.Device]error{}}
}

func (e *countingEngine) Name() string                 { return e.name }
func (e *countingEngine) DefaultDevice() device.Device { return e.def }

func (e *countingEngine) Load(ctx context.Context, req engine.Request) (engine.Instance, error) {
	e.calls.Add(1)
	if e.gate != nil {
		<-e.gate
	}
	d := req.Device
	if d.IsZero() {
		d = e.def
	}
	e.mu.Lock()
	e.requests = append(e.requests, req)
	err := e.fail[d]
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &stubInstance{device: d, path: "/models/" + req.ModelName}, nil
}

func (e *countingEngine) setFail(d device.Device, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.fail, d)
		return
	}
	e.fail[d] = err
}

func (e *countingEngine) lastRequest(t *testing.T) engine.Request {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		t.Fatalf("engine received no request")
	}
	return e.requests[len(e.requests)-1]
}

type stubInstance struct {
	device   device.Device
	path     string
	closeErr error
	closed   atomic.Int32
}

func (i *stubInstance) Device() device.Device { return i.device }
func (i *stubInstance) Path() string          { return i.path }
func (i *stubInstance) Close() error {
	i.closed.Add(1)
	return i.closeErr
}

type upperTranslator struct{}

func (upperTranslator) Preprocess(in []byte) ([]byte, error)   { return in, nil }
func (upperTranslator) Postprocess(out []byte) ([]byte, error) { return out, nil }

// newTestInfo builds a descriptor bound to its own engine and translator registries.
func newTestInfo(t *testing.T, e *countingEngine, mutate func(*Config)) *Info {
	t.Helper()
	tr := translator.NewRegistry()
	tr.RegisterTranslator("upper", func() translator.Translator { return upperTranslator{} })
	cfg := Config{
		ID:          "resnet",
		URL:         "file:///models/resnet/",
		ModelName:   "resnet",
		Engines:     engine.NewRegistry(e),
		Translators: tr,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

var errBoom = errors.New("boom")

func strptr(s string) *string { return &s }

func intptr(n int) *int { return &n }

func durptr(d time.Duration) *time.Duration { return &d }
