package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modelreg/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// DefaultEngine is the engine used by models without one.
	DefaultEngine      string   `json:"default_engine" yaml:"default_engine" toml:"default_engine"`
	DefaultDevices     []string `json:"default_devices" yaml:"default_devices" toml:"default_devices"`
	LoadTimeoutSeconds int      `json:"load_timeout_seconds" yaml:"load_timeout_seconds" toml:"load_timeout_seconds"`
	MaxParallelLoads   int      `json:"max_parallel_loads" yaml:"max_parallel_loads" toml:"max_parallel_loads"`

	LlamaBin     string `json:"llama_bin" yaml:"llama_bin" toml:"llama_bin"`
	LlamaCtx     int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`

	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled  bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Models are registered (and loaded) at startup.
	Models []types.ModelSpec `json:"models" yaml:"models" toml:"models"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the parts of the file that cannot be defaulted.
func (c Config) Validate() error {
	for i, m := range c.Models {
		if strings.TrimSpace(m.URL) == "" {
			return fmt.Errorf("models[%d]: url is required", i)
		}
	}
	if c.LoadTimeoutSeconds < 0 || c.MaxParallelLoads < 0 || c.MaxBodyBytes < 0 {
		return fmt.Errorf("negative limits are not allowed")
	}
	return nil
}
