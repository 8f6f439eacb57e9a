// Package engine is the boundary to the model-loading runtimes. A loading
// request is described by Request (the criteria), executed by an Engine, and
// produces an Instance owned by that engine until closed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"modelreg/internal/device"
	"modelreg/internal/translator"
)

// Well-known option and argument keys.
const (
	// OptionEnv carries comma separated KEY=VALUE pairs for the engine process.
	OptionEnv = "env"
	// ArgBatchifier selects the input adapter; "stack" enables batching.
	ArgBatchifier = "batchifier"
	// BatchifierStack is the stacking batchifier.
	BatchifierStack = "stack"
)

// Request is the set of criteria an Engine loads a model from.
type Request struct {
	ModelURL    string
	ModelName   string
	Engine      string
	Application string
	Filters     map[string]string
	Arguments   map[string]any
	Options     map[string]string
	// Device is the zero Device when the engine should pick its own.
	Device            device.Device
	Translator        translator.Translator
	TranslatorFactory translator.Factory
}

// SetOption sets an option, allocating the map if needed.
func (r *Request) SetOption(key, value string) {
	if r.Options == nil {
		r.Options = make(map[string]string)
	}
	r.Options[key] = value
}

// SetArgument sets an argument, allocating the map if needed.
func (r *Request) SetArgument(key string, value any) {
	if r.Arguments == nil {
		r.Arguments = make(map[string]any)
	}
	r.Arguments[key] = value
}

// AddEnv appends KEY=VALUE to the env option.
func (r *Request) AddEnv(key, value string) {
	kv := key + "=" + value
	if cur := r.Options[OptionEnv]; cur != "" {
		kv = cur + "," + kv
	}
	r.SetOption(OptionEnv, kv)
}

// Env returns the KEY=VALUE pairs carried by the env option.
func (r *Request) Env() []string {
	var out []string
	for _, kv := range strings.Split(r.Options[OptionEnv], ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" || !strings.Contains(kv, "=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// IntArgument reads an integer argument regardless of how the config decoder typed it.
func (r *Request) IntArgument(key string) (int, bool) {
	switch v := r.Arguments[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Instance is one loaded, device-bound copy of a model.
type Instance interface {
	Device() device.Device
	// Path is the local directory holding the model artifacts.
	Path() string
	// Close releases engine resources. Closing twice is a no-op.
	Close() error
}

// Engine loads models. Load may block for a long time and performs I/O.
type Engine interface {
	Name() string
	DefaultDevice() device.Device
	Load(ctx context.Context, req Request) (Instance, error)
}

// DeviceBinder lets an engine decide how a device is expressed in a request.
// Engines that do not implement it get BindDevice.
type DeviceBinder interface {
	BindDevice(req *Request, d device.Device)
}

// BindDevice is the default device policy. Accelerator cores are selected via
// the NEURON_RT_VISIBLE_CORES environment option; every other device is set
// on the request.
func BindDevice(req *Request, d device.Device) {
	if d.Type == device.TypeNeuronCore {
		req.AddEnv("NEURON_RT_VISIBLE_CORES", strconv.Itoa(d.ID))
		return
	}
	req.Device = d
}

// Bind applies e's device policy, falling back to BindDevice.
func Bind(e Engine, req *Request, d device.Device) {
	if b, ok := e.(DeviceBinder); ok {
		b.BindDevice(req, d)
		return
	}
	BindDevice(req, d)
}

// SanityReport describes whether an engine's runtime dependencies are present.
type SanityReport struct {
	Engine string `json:"engine"`
	OK     bool   `json:"ok"`
	Path   string `json:"path,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Checker is implemented by engines with external dependencies.
type Checker interface {
	SanityCheck() SanityReport
}

var (
	ErrUnknownEngine   = errors.New("unknown engine")
	ErrNoDefaultEngine = errors.New("no default engine registered")
)

// Registry maps engine names to engines. The first registered engine is the
// default until SetDefault is called.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	def     string
}

// NewRegistry returns a registry holding engines.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine)}
	for _, e := range engines {
		r.Register(e)
	}
	return r
}

// Register installs e under e.Name(), replacing an engine of the same name.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Name()] = e
	if r.def == "" {
		r.def = e.Name()
	}
}

// SetDefault selects the engine used when a model has no engine binding.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	r.def = name
	return nil
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}
	return e, nil
}

// Default returns the default engine.
func (r *Registry) Default() (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[r.def]
	if !ok {
		return nil, ErrNoDefaultEngine
	}
	return e, nil
}

// Resolve returns the named engine, or the default when name is empty.
func (r *Registry) Resolve(name string) (Engine, error) {
	if name == "" {
		return r.Default()
	}
	return r.Get(name)
}

// Names lists registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.engines))
	for k := range r.engines {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SanityCheck runs every engine that implements Checker.
func (r *Registry) SanityCheck() []SanityReport {
	var out []SanityReport
	for _, name := range r.Names() {
		e, err := r.Get(name)
		if err != nil {
			continue
		}
		if c, ok := e.(Checker); ok {
			out = append(out, c.SanityCheck())
		}
	}
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry: the file engine (default),
// llama-server and the in-process llama engine.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(
			NewFileEngine(),
			NewLlamaServerEngine(LlamaServerConfig{}),
			NewLlamaEngine(LlamaConfig{}),
		)
	})
	return defaultRegistry
}
