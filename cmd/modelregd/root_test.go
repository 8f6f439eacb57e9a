package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"modelreg/internal/config"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

func TestRootCmd_EnvDefaults(t *testing.T) {
	t.Setenv("MODELREG_ADDR", ":9999")
	t.Setenv("MODELREG_LOAD_TIMEOUT_SECONDS", "7")
	t.Setenv("MODELREG_CORS", "yes")
	cmd := newRootCmd()
	f := cmd.Flags()
	if v, _ := f.GetString("addr"); v != ":9999" {
		t.Fatalf("addr=%q", v)
	}
	if v, _ := f.GetDuration("load-timeout"); v != 7*time.Second {
		t.Fatalf("load-timeout=%v", v)
	}
	if v, _ := f.GetBool("cors"); !v {
		t.Fatalf("cors should default from env")
	}
}

func TestOptionsMerge_FlagsWin(t *testing.T) {
	o := &options{addr: ":1", logLevel: "debug"}
	cfg := config.Config{
		Addr:               ":2",
		LogLevel:           "warn",
		ModelsDir:          "/models",
		DefaultDevices:     []string{"cpu", "gpu0"},
		LoadTimeoutSeconds: 3,
		CORSEnabled:        true,
		Models:             []types.ModelSpec{{URL: "file:///m/"}},
	}
	changed := func(name string) bool { return name == "addr" }
	o.merge(cfg, changed)
	if o.addr != ":1" {
		t.Fatalf("flag value should win, got %q", o.addr)
	}
	if o.logLevel != "warn" || o.modelsDir != "/models" || o.devices != "cpu,gpu0" {
		t.Fatalf("config values not applied: %+v", o)
	}
	if o.loadTimeout != 3*time.Second || !o.cors || len(o.models) != 1 {
		t.Fatalf("config values not applied: %+v", o)
	}
}

func TestNewEngines_UnknownDefault(t *testing.T) {
	if _, err := newEngines(&options{defaultEngine: "nope"}); err == nil {
		t.Fatalf("expected error for unknown default engine")
	}
	reg, err := newEngines(&options{defaultEngine: "llama-server"})
	if err != nil {
		t.Fatalf("newEngines: %v", err)
	}
	if e, _ := reg.Default(); e.Name() != "llama-server" {
		t.Fatalf("default=%s", e.Name())
	}
}

func TestNewManager_ScansAndRegisters(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "resnet18"), 0o755); err != nil {
		t.Fatal(err)
	}
	o := &options{
		modelsDir:     dir,
		defaultEngine: "file",
		devices:       "cpu",
		models: []types.ModelSpec{
			{ID: "bert", URL: "file:///models/bert/"},
			// same key as the scanned model: skipped
			{ID: "resnet18", URL: "file:///elsewhere/resnet18/"},
		},
	}
	mgr, err := newManager(o)
	if err != nil {
		t.Fatalf("newManager: %v", err)
	}
	defer mgr.Close()
	models := mgr.Models()
	if len(models) != 2 {
		t.Fatalf("models=%v", models)
	}
	info, err := mgr.Get(model.Key{ID: "resnet18"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(info.URL(), "file://"+filepath.ToSlash(dir)) {
		t.Fatalf("scanned model should win, url=%s", info.URL())
	}
}

func TestNewManager_BadDevices(t *testing.T) {
	if _, err := newManager(&options{defaultEngine: "file", devices: "gpu:x"}); err == nil {
		t.Fatalf("expected device parse error")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", "json")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"service":"modelregd"`) {
		t.Fatalf("missing service field: %s", out)
	}
	buf.Reset()
	fallback := newLogger(&buf, "bogus", "json")
	fallback.Info().Msg("default info")
	if !strings.Contains(buf.String(), "default info") {
		t.Fatalf("unknown level should fall back to info")
	}
}
