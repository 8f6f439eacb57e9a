package engine

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"modelreg/internal/common/fsutil"
	"modelreg/internal/device"
)

// LlamaServerEngineName is the name of the subprocess llama.cpp engine.
const LlamaServerEngineName = "llama-server"

const (
	defaultReadyTimeout = 30 * time.Second
	defaultStopGrace    = 2 * time.Second
)

// LlamaServerConfig configures the subprocess engine. Zero values select defaults.
type LlamaServerConfig struct {
	Bin          string
	Host         string
	PortStart    int
	PortEnd      int
	ReadyTimeout time.Duration
	StopGrace    time.Duration
	ExtraArgs    []string
}

// LlamaServerEngine spawns one llama-server process per loaded instance.
// Each device gets its own process with device visibility set through the
// child environment.
type LlamaServerEngine struct {
	cfg        LlamaServerConfig
	httpClient *http.Client
}

// NewLlamaServerEngine returns a subprocess engine.
func NewLlamaServerEngine(cfg LlamaServerConfig) *LlamaServerEngine {
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = defaultStopGrace
	}
	// Timeout=0: every request carries a context deadline.
	return &LlamaServerEngine{cfg: cfg, httpClient: &http.Client{Timeout: 0}}
}

func (e *LlamaServerEngine) Name() string                 { return LlamaServerEngineName }
func (e *LlamaServerEngine) DefaultDevice() device.Device { return device.CPU() }

// BindDevice restricts the child process to one accelerator via the
// environment and records the device on the request.
func (e *LlamaServerEngine) BindDevice(req *Request, d device.Device) {
	switch d.Type {
	case device.TypeGPU:
		req.AddEnv("CUDA_VISIBLE_DEVICES", strconv.Itoa(d.ID))
	case device.TypeNeuronCore:
		req.AddEnv("NEURON_RT_VISIBLE_CORES", strconv.Itoa(d.ID))
	}
	req.Device = d
}

func (e *LlamaServerEngine) binary() string {
	if e.cfg.Bin != "" {
		return e.cfg.Bin
	}
	if p, err := exec.LookPath("llama-server"); err == nil {
		return p
	}
	return ""
}

// SanityCheck reports whether the llama-server binary is available.
func (e *LlamaServerEngine) SanityCheck() SanityReport {
	r := SanityReport{Engine: e.Name()}
	bin := e.binary()
	if bin == "" {
		r.Error = "llama-server not found"
		return r
	}
	r.Path = bin
	fi, err := os.Stat(bin)
	switch {
	case err != nil:
		r.Error = err.Error()
	case fi.IsDir():
		r.Error = "llama-server path is a directory"
	default:
		r.OK = true
	}
	return r
}

func (e *LlamaServerEngine) Load(ctx context.Context, req Request) (Instance, error) {
	bin := e.binary()
	if bin == "" {
		return nil, ErrDependencyUnavailable("llama-server binary not found")
	}
	modelPath, err := ggufPath(req)
	if err != nil {
		return nil, err
	}
	port, err := e.pickPort()
	if err != nil {
		return nil, err
	}
	baseURL := "http://" + net.JoinHostPort(e.cfg.Host, strconv.Itoa(port))

	cmd := exec.Command(bin, e.args(req, modelPath, port)...)
	cmd.Env = append(os.Environ(), req.Env()...)
	stderr := &syncBuffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start llama-server: %w", err)
	}
	d := req.Device
	if d.IsZero() {
		d = e.DefaultDevice()
	}
	inst := &llamaServerInstance{
		cmd:     cmd,
		baseURL: baseURL,
		dir:     filepath.Dir(modelPath),
		device:  d,
		grace:   e.cfg.StopGrace,
		done:    make(chan struct{}),
	}
	go func() {
		inst.waitErr = cmd.Wait()
		close(inst.done)
	}()
	log.Info().Str("engine", e.Name()).Str("model", modelPath).Int("pid", cmd.Process.Pid).
		Str("url", baseURL).Stringer("device", d).Msg("llama-server started")

	if err := e.waitReady(ctx, inst); err != nil {
		_ = inst.Close()
		return nil, fmt.Errorf("%w; stderr tail: %s", err, stderr.Tail(4096))
	}
	log.Info().Str("engine", e.Name()).Int("pid", cmd.Process.Pid).Msg("llama-server ready")
	return inst, nil
}

func (e *LlamaServerEngine) args(req Request, modelPath string, port int) []string {
	args := []string{"-m", modelPath, "--host", e.cfg.Host, "--port", strconv.Itoa(port)}
	if n, ok := req.IntArgument("ctx_size"); ok && n > 0 {
		args = append(args, "-c", strconv.Itoa(n))
	}
	if n, ok := req.IntArgument("threads"); ok && n > 0 {
		args = append(args, "-t", strconv.Itoa(n))
	}
	if n, ok := req.IntArgument("n_gpu_layers"); ok {
		args = append(args, "-ngl", strconv.Itoa(n))
	} else if req.Device.IsGPU() {
		args = append(args, "-ngl", "999")
	}
	if req.Arguments[ArgBatchifier] == BatchifierStack {
		args = append(args, "--cont-batching")
	}
	return append(args, e.cfg.ExtraArgs...)
}

func (e *LlamaServerEngine) waitReady(ctx context.Context, inst *llamaServerInstance) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ReadyTimeout)
	defer cancel()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if e.healthy(ctx, inst.baseURL) {
			return nil
		}
		select {
		case <-inst.done:
			if inst.waitErr != nil {
				return fmt.Errorf("llama-server exited early: %w", inst.waitErr)
			}
			return fmt.Errorf("llama-server exited before ready: %s", inst.baseURL)
		case <-ctx.Done():
			return fmt.Errorf("llama-server not ready in time: %s: %w", inst.baseURL, ctx.Err())
		case <-tick.C:
		}
	}
}

func (e *LlamaServerEngine) healthy(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (e *LlamaServerEngine) pickPort() (int, error) {
	if e.cfg.PortStart > 0 && e.cfg.PortEnd >= e.cfg.PortStart {
		for p := e.cfg.PortStart; p <= e.cfg.PortEnd; p++ {
			l, err := net.Listen("tcp", net.JoinHostPort(e.cfg.Host, strconv.Itoa(p)))
			if err != nil {
				continue
			}
			_ = l.Close()
			return p, nil
		}
		return 0, fmt.Errorf("no free port in range %d-%d", e.cfg.PortStart, e.cfg.PortEnd)
	}
	l, err := net.Listen("tcp", net.JoinHostPort(e.cfg.Host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// ggufPath resolves the weights file: the URL itself, or a .gguf inside the
// model directory (named after ModelName when set).
func ggufPath(req Request) (string, error) {
	p, err := LocalPath(req.ModelURL)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("model artifact: %w", err)
	}
	if !fi.IsDir() {
		return p, nil
	}
	return fsutil.FindByExt(p, req.ModelName, ".gguf")
}

type llamaServerInstance struct {
	cmd     *exec.Cmd
	baseURL string
	dir     string
	device  device.Device
	grace   time.Duration

	done    chan struct{}
	waitErr error
	once    sync.Once
}

func (i *llamaServerInstance) Device() device.Device { return i.device }
func (i *llamaServerInstance) Path() string          { return i.dir }

// BaseURL is the HTTP endpoint of the spawned server.
func (i *llamaServerInstance) BaseURL() string { return i.baseURL }

// PID is the process id of the spawned server.
func (i *llamaServerInstance) PID() int { return i.cmd.Process.Pid }

// Close sends SIGTERM and kills the process if it outlives the grace period.
func (i *llamaServerInstance) Close() error {
	i.once.Do(func() {
		select {
		case <-i.done:
			return
		default:
		}
		_ = i.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-i.done:
		case <-time.After(i.grace):
			_ = i.cmd.Process.Kill()
			<-i.done
		}
		log.Debug().Int("pid", i.cmd.Process.Pid).Msg("llama-server stopped")
	})
	return nil
}

// syncBuffer collects child stderr while the process runs.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Tail returns at most n trailing bytes.
func (b *syncBuffer) Tail(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
