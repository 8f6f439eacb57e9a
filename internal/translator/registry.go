// Package translator holds the named pre/post-processing capabilities that a
// model can be configured with. Implementations register under a name at
// process start; model loading looks them up by that name.
package translator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Translator converts raw request/response payloads around a model call.
type Translator interface {
	Preprocess(in []byte) ([]byte, error)
	Postprocess(out []byte) ([]byte, error)
}

// Factory builds a Translator from the model's loading arguments.
type Factory interface {
	NewTranslator(args map[string]any) (Translator, error)
}

// ErrNotRegistered is returned when a name has no registered constructor.
var ErrNotRegistered = errors.New("translator not registered")

// Registry maps names to translator and factory constructors.
type Registry struct {
	mu          sync.RWMutex
	translators map[string]func() Translator
	factories   map[string]func() Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		translators: make(map[string]func() Translator),
		factories:   make(map[string]func() Factory),
	}
}

// RegisterTranslator installs a constructor for name, replacing any previous one.
func (r *Registry) RegisterTranslator(name string, fn func() Translator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translators[name] = fn
}

// RegisterFactory installs a factory constructor for name, replacing any previous one.
func (r *Registry) RegisterFactory(name string, fn func() Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Translator instantiates the translator registered under name.
func (r *Registry) Translator(name string) (Translator, error) {
	r.mu.RLock()
	fn := r.translators[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("translator %q: %w", name, ErrNotRegistered)
	}
	t := fn()
	if t == nil {
		return nil, fmt.Errorf("translator %q: constructor returned nil", name)
	}
	return t, nil
}

// Factory instantiates the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	fn := r.factories[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("translator factory %q: %w", name, ErrNotRegistered)
	}
	f := fn()
	if f == nil {
		return nil, fmt.Errorf("translator factory %q: constructor returned nil", name)
	}
	return f, nil
}

// Names lists registered translator and factory names, sorted.
func (r *Registry) Names() (translators, factories []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.translators {
		translators = append(translators, k)
	}
	for k := range r.factories {
		factories = append(factories, k)
	}
	sort.Strings(translators)
	sort.Strings(factories)
	return translators, factories
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.RegisterTranslator(PassthroughName, func() Translator { return Passthrough{} })
	r.RegisterFactory(PassthroughName, func() Factory { return PassthroughFactory{} })
	return r
}()

// Default returns the process-wide registry. Built-ins are registered on init.
func Default() *Registry { return defaultRegistry }
