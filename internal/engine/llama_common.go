package engine

import "modelreg/internal/device"

// LlamaEngineName is the name of the in-process llama.cpp engine.
const LlamaEngineName = "llama"

// LlamaConfig configures the in-process engine.
type LlamaConfig struct {
	ContextSize int
	Threads     int
}

// LlamaEngine loads GGUF models into this process through go-llama.cpp.
// Without the 'llama' build tag every Load fails with a dependency error.
type LlamaEngine struct {
	cfg LlamaConfig
}

// NewLlamaEngine returns the in-process engine.
func NewLlamaEngine(cfg LlamaConfig) *LlamaEngine {
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = 2048
	}
	return &LlamaEngine{cfg: cfg}
}

func (e *LlamaEngine) Name() string                 { return LlamaEngineName }
func (e *LlamaEngine) DefaultDevice() device.Device { return device.CPU() }

// SanityCheck reports whether llama support was compiled in.
func (e *LlamaEngine) SanityCheck() SanityReport {
	r := SanityReport{Engine: e.Name(), OK: llamaBuilt}
	if !llamaBuilt {
		r.Error = "llama support not built (missing 'llama' build tag)"
	}
	return r
}
