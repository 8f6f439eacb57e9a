package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"modelreg/internal/engine"
	"modelreg/internal/httpapi"
	"modelreg/internal/manager"
	"modelreg/internal/registry"
)

// createModelStore creates a temporary model store. Names ending in "/" become
// directories holding a weights file; others become empty files.
func createModelStore(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if n[len(n)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", p, err)
			}
			p = filepath.Join(p, "weights.bin")
		}
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

// newServerForDir scans modelsDir, registers and loads every model with the
// file engine, and serves the management API.
func newServerForDir(t *testing.T, modelsDir string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	specs, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Engines: engine.NewRegistry(engine.NewFileEngine()),
	})
	t.Cleanup(func() { _ = mgr.Close() })
	for _, s := range specs {
		info, err := mgr.Register(s)
		if err != nil {
			t.Fatalf("register %s: %v", s.URL, err)
		}
		if err := mgr.Load(context.Background(), info.Key()); err != nil {
			t.Fatalf("load %s: %v", info, err)
		}
	}
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func decode(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("json: %v (%s)", err, b)
	}
}
