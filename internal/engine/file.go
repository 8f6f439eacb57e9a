package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"modelreg/internal/device"
)

// FileEngineName is the name of the built-in artifact engine.
const FileEngineName = "file"

// FileEngine "loads" a model by validating that its artifacts exist locally.
// It holds no device resources and is the process default engine.
type FileEngine struct {
	defaultDevice device.Device
}

// NewFileEngine returns a FileEngine whose default device is the CPU.
func NewFileEngine() *FileEngine { return &FileEngine{defaultDevice: device.CPU()} }

func (e *FileEngine) Name() string                 { return FileEngineName }
func (e *FileEngine) DefaultDevice() device.Device { return e.defaultDevice }

func (e *FileEngine) Load(ctx context.Context, req Request) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := LocalPath(req.ModelURL)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	dir := p
	if !fi.IsDir() {
		dir = filepath.Dir(p)
	} else if req.ModelName != "" {
		matches, _ := filepath.Glob(filepath.Join(p, req.ModelName+"*"))
		if len(matches) == 0 {
			return nil, fmt.Errorf("model %q not found in %s: %w", req.ModelName, p, os.ErrNotExist)
		}
	}
	d := req.Device
	if d.IsZero() {
		d = e.defaultDevice
	}
	return &fileInstance{dir: dir, device: d}, nil
}

type fileInstance struct {
	dir    string
	device device.Device
}

func (i *fileInstance) Device() device.Device { return i.device }
func (i *fileInstance) Path() string          { return i.dir }

func (i *fileInstance) Close() error { return nil }
