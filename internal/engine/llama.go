//go:build llama

package engine

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
	"github.com/rs/zerolog/log"

	"modelreg/internal/device"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

func (e *LlamaEngine) Load(ctx context.Context, req Request) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	modelPath, err := ggufPath(req)
	if err != nil {
		return nil, err
	}
	ctxSize := e.cfg.ContextSize
	if n, ok := req.IntArgument("ctx_size"); ok && n > 0 {
		ctxSize = n
	}
	opts := []llama.ModelOption{llama.SetContext(ctxSize)}
	d := req.Device
	if d.IsZero() {
		d = e.DefaultDevice()
	}
	if d.IsGPU() {
		layers := 999
		if n, ok := req.IntArgument("n_gpu_layers"); ok {
			layers = n
		}
		opts = append(opts, llama.SetGPULayers(layers), llama.SetMainGPU(strconv.Itoa(d.ID)))
	}
	if n, ok := req.IntArgument("n_batch"); ok && n > 0 {
		opts = append(opts, llama.SetNBatch(n))
	}
	m, err := llama.New(modelPath, opts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("engine", e.Name()).Str("model", modelPath).Stringer("device", d).Msg("llama model loaded")
	return &llamaInstance{model: m, dir: filepath.Dir(modelPath), device: d}, nil
}

type llamaInstance struct {
	mu     sync.Mutex
	model  *llama.LLama
	dir    string
	device device.Device
}

func (i *llamaInstance) Device() device.Device { return i.device }
func (i *llamaInstance) Path() string          { return i.dir }

func (i *llamaInstance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.model != nil {
		i.model.Free()
		i.model = nil
	}
	return nil
}
