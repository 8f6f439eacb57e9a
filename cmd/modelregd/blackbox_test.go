package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"modelreg/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the daemon binary")
	}
	binPath := filepath.Join(t.TempDir(), "modelregd")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if v != nil {
		if err := json.Unmarshal(b, v); err != nil {
			t.Fatalf("json: %v body=%s", err, b)
		}
	}
	return resp.StatusCode
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	modelsDir := t.TempDir()
	for _, name := range []string{"alpha", "beta"} {
		if err := os.MkdirAll(filepath.Join(modelsDir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--models-dir", modelsDir, "--log-level", "warn")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })

	// startup loads run in the background; wait for readiness
	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become ready in time")
		}
		time.Sleep(50 * time.Millisecond)
	}

	var list types.ModelsResponse
	if code := getJSON(t, base+"/models", &list); code != http.StatusOK {
		t.Fatalf("/models %d", code)
	}
	if len(list.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(list.Models))
	}
	for {
		var st types.StatusResponse
		if code := getJSON(t, base+"/status", &st); code != http.StatusOK {
			t.Fatalf("/status %d", code)
		}
		if st.ReadyCount == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("ready_count=%d last_error=%q", st.ReadyCount, st.LastError)
		}
		time.Sleep(50 * time.Millisecond)
	}
	if code := getJSON(t, base+"/models/missing", nil); code != http.StatusNotFound {
		t.Fatalf("missing model %d", code)
	}
}
