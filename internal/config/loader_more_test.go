package config

import (
	"strings"
	"testing"
)

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name, file, content, wantErr string
	}{
		{"missing file", "", "", "no such file"},
		{"bad yaml", "bad.yaml", "addr: :8080\n: broken\n", ""},
		{"bad json", "bad.json", `{ "addr": ":8080", "models": }`, ""},
		{"bad toml", "bad.toml", "addr=:8080\nmodels_dir\n", ""},
		{"unknown extension", "cfg.ini", "addr=:1", "unsupported config extension"},
		{"model without url", "cfg.yaml", "models:\n  - id: a\n", "models[0]: url is required"},
		{"negative timeout", "cfg.json", `{"load_timeout_seconds":-1}`, "negative"},
	}
	for _, c := range cases {
		p := "/definitely/not/a/real/file-12345.yaml"
		if c.file != "" {
			p = writeTempFile(t, t.TempDir(), c.file, c.content)
		}
		_, err := Load(p)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if c.wantErr != "" && !strings.Contains(err.Error(), c.wantErr) {
			t.Fatalf("%s: error %q does not mention %q", c.name, err, c.wantErr)
		}
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
