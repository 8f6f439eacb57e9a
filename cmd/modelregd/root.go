package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"modelreg/internal/config"
	"modelreg/internal/device"
	"modelreg/internal/engine"
	"modelreg/internal/httpapi"
	"modelreg/internal/manager"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

// options are the resolved server settings: flags, then MODELREG_* env
// defaults, then the config file for anything not set on the command line.
type options struct {
	addr          string
	configPath    string
	modelsDir     string
	defaultEngine string
	devices       string
	loadTimeout   time.Duration
	maxParallel   int
	logLevel      string
	logFormat     string
	llamaBin      string
	llamaCtx      int
	llamaThreads  int
	cors          bool
	corsOrigins   string
	maxBodyBytes  int64

	models []types.ModelSpec
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "modelregd",
		Short:         "Model registry daemon: registers, loads and reconfigures models over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				opts.merge(cfg, cmd.Flags().Changed)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.addr, "addr", envStr("MODELREG_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.configPath, "config", envStr("MODELREG_CONFIG", ""), "Path to a config file (.yaml, .json or .toml)")
	f.StringVar(&opts.modelsDir, "models-dir", envStr("MODELREG_MODELS_DIR", ""), "Directory scanned for models at startup")
	f.StringVar(&opts.defaultEngine, "default-engine", envStr("MODELREG_DEFAULT_ENGINE", engine.FileEngineName), "Engine for models that do not name one")
	f.StringVar(&opts.devices, "devices", envStr("MODELREG_DEVICES", ""), "Comma separated default devices, e.g. cpu,gpu0")
	f.DurationVar(&opts.loadTimeout, "load-timeout", time.Duration(envInt("MODELREG_LOAD_TIMEOUT_SECONDS", 0))*time.Second, "Max wait per load call (0 = no limit)")
	f.IntVar(&opts.maxParallel, "max-parallel-loads", envInt("MODELREG_MAX_PARALLEL_LOADS", 0), "Concurrent device loads per model (0 = default)")
	f.StringVar(&opts.logLevel, "log-level", envStr("MODELREG_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	f.StringVar(&opts.logFormat, "log-format", envStr("MODELREG_LOG_FORMAT", "json"), "Log format: json|console")
	f.StringVar(&opts.llamaBin, "llama-bin", envStr("MODELREG_LLAMA_BIN", ""), "Path to llama-server (defaults to PATH lookup)")
	f.IntVar(&opts.llamaCtx, "llama-ctx", envInt("MODELREG_LLAMA_CTX", 0), "Context size for llama engines (0 = engine default)")
	f.IntVar(&opts.llamaThreads, "llama-threads", envInt("MODELREG_LLAMA_THREADS", 0), "Threads for llama engines (0 = engine default)")
	f.BoolVar(&opts.cors, "cors", envBool("MODELREG_CORS", false), "Enable CORS")
	f.StringVar(&opts.corsOrigins, "cors-origins", envStr("MODELREG_CORS_ORIGINS", ""), "Comma separated allowed origins (default *)")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", int64(envInt("MODELREG_MAX_BODY_BYTES", 0)), "Max JSON body size (0 = 1MiB)")
	return root
}

// merge fills options from the config file where the flag was not set.
func (o *options) merge(cfg config.Config, changed func(string) bool) {
	str := func(flag string, dst *string, v string) {
		if !changed(flag) && v != "" {
			*dst = v
		}
	}
	num := func(flag string, dst *int, v int) {
		if !changed(flag) && v != 0 {
			*dst = v
		}
	}
	str("addr", &o.addr, cfg.Addr)
	str("models-dir", &o.modelsDir, cfg.ModelsDir)
	str("default-engine", &o.defaultEngine, cfg.DefaultEngine)
	str("llama-bin", &o.llamaBin, cfg.LlamaBin)
	str("log-level", &o.logLevel, cfg.LogLevel)
	num("max-parallel-loads", &o.maxParallel, cfg.MaxParallelLoads)
	num("llama-ctx", &o.llamaCtx, cfg.LlamaCtx)
	num("llama-threads", &o.llamaThreads, cfg.LlamaThreads)
	if !changed("devices") && len(cfg.DefaultDevices) > 0 {
		o.devices = strings.Join(cfg.DefaultDevices, ",")
	}
	if !changed("load-timeout") && cfg.LoadTimeoutSeconds > 0 {
		o.loadTimeout = time.Duration(cfg.LoadTimeoutSeconds) * time.Second
	}
	if !changed("max-body-bytes") && cfg.MaxBodyBytes > 0 {
		o.maxBodyBytes = cfg.MaxBodyBytes
	}
	if !changed("cors") && cfg.CORSEnabled {
		o.cors = true
	}
	if !changed("cors-origins") && len(cfg.CORSOrigins) > 0 {
		o.corsOrigins = strings.Join(cfg.CORSOrigins, ",")
	}
	o.models = append(o.models, cfg.Models...)
}

// newEngines builds the engine registry for opts.
func newEngines(o *options) (*engine.Registry, error) {
	reg := engine.NewRegistry(
		engine.NewFileEngine(),
		engine.NewLlamaServerEngine(engine.LlamaServerConfig{Bin: o.llamaBin}),
		engine.NewLlamaEngine(engine.LlamaConfig{ContextSize: o.llamaCtx, Threads: o.llamaThreads}),
	)
	if err := reg.SetDefault(o.defaultEngine); err != nil {
		return nil, err
	}
	return reg, nil
}

// newManager builds the manager and registers the scanned and configured
// models. Nothing is loaded yet.
func newManager(o *options) (*manager.Manager, error) {
	engines, err := newEngines(o)
	if err != nil {
		return nil, err
	}
	devs, err := device.ParseList(o.devices)
	if err != nil {
		return nil, fmt.Errorf("devices: %w", err)
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Engines:          engines,
		DefaultDevices:   devs,
		LoadTimeout:      o.loadTimeout,
		MaxParallelLoads: o.maxParallel,
	})
	var specs []types.ModelSpec
	if o.modelsDir != "" {
		scanned, err := registry.LoadDir(o.modelsDir)
		if err != nil {
			return nil, fmt.Errorf("scan models: %w", err)
		}
		specs = append(specs, scanned...)
	}
	specs = append(specs, o.models...)
	for _, s := range specs {
		if _, err := mgr.Register(s); err != nil {
			if manager.IsModelExists(err) {
				log.Warn().Err(err).Str("url", s.URL).Msg("skipping duplicate model")
				continue
			}
			return nil, err
		}
	}
	for _, r := range engines.SanityCheck() {
		ev := log.Info()
		if !r.OK {
			ev = log.Warn()
		}
		ev.Str("engine", r.Engine).Bool("ok", r.OK).Str("path", r.Path).Str("error", r.Error).Msg("engine check")
	}
	return mgr, nil
}

// loadAll loads every registered model in the background. Failures are
// logged and surface through /status.
func loadAll(ctx context.Context, mgr *manager.Manager) {
	for _, info := range mgr.Models() {
		go func() {
			if err := mgr.Load(ctx, info.Key()); err != nil {
				log.Error().Err(err).Str("model", info.String()).Msg("startup load failed")
			}
		}()
	}
}

func run(ctx context.Context, o *options) error {
	logger := newLogger(os.Stderr, o.logLevel, o.logFormat)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(o.maxBodyBytes)
	httpapi.SetCORSOptions(o.cors, splitCSV(o.corsOrigins), nil, nil)

	mgr, err := newManager(o)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("closing models")
		}
	}()
	loadAll(ctx, mgr)

	srv := &http.Server{
		Addr:              o.addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", o.addr).Str("models_dir", o.modelsDir).Int("models", len(mgr.Models())).Msg("modelregd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
