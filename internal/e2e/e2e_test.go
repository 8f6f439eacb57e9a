package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"modelreg/pkg/types"
)

func TestE2E_ScannedModelsAreReady(t *testing.T) {
	dir := createModelStore(t, "resnet18/", "llama-7b.gguf", ".hidden/", "notes.txt")
	srv, _ := newServerForDir(t, dir)

	resp, body := httpDo(t, http.MethodGet, srv.URL+"/models", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var list types.ModelsResponse
	decode(t, body, &list)
	if len(list.Models) != 2 {
		t.Fatalf("models=%+v", list.Models)
	}
	for _, m := range list.Models {
		if m.Status != "READY" || len(m.Devices) != 1 || m.Devices[0] != "cpu" {
			t.Fatalf("unexpected model view: %+v", m)
		}
	}

	resp, _ = httpDo(t, http.MethodGet, srv.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz=%d", resp.StatusCode)
	}
}

func TestE2E_RegisterAsyncAndPoll(t *testing.T) {
	dir := createModelStore(t, "bert/")
	srv, _ := newServerForDir(t, t.TempDir())

	payload := fmt.Sprintf(`{"id":"bert","version":"2","url":"file://%s/","synchronous":false}`, filepath.ToSlash(filepath.Join(dir, "bert")))
	resp, body := httpDo(t, http.MethodPost, srv.URL+"/models", []byte(payload))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var reg types.RegisterResponse
	decode(t, body, &reg)
	if reg.OperationID == "" {
		t.Fatalf("missing operation id")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, body = httpDo(t, http.MethodGet, srv.URL+"/operations/"+reg.OperationID, nil)
		var op types.OperationStatus
		decode(t, body, &op)
		if op.State == "done" {
			break
		}
		if op.State == "failed" || time.Now().After(deadline) {
			t.Fatalf("operation did not complete: %+v", op)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, body = httpDo(t, http.MethodGet, srv.URL+"/models/bert/2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("describe status=%d", resp.StatusCode)
	}
	var v types.ModelView
	decode(t, body, &v)
	if v.Status != "READY" || v.Version == nil || *v.Version != "2" {
		t.Fatalf("view=%+v", v)
	}
}

func TestE2E_RegisterMissingArtifactIsRolledBack(t *testing.T) {
	srv, mgr := newServerForDir(t, t.TempDir())
	payload := fmt.Sprintf(`{"id":"ghost","url":"file://%s/ghost/"}`, filepath.ToSlash(t.TempDir()))
	resp, _ := httpDo(t, http.MethodPost, srv.URL+"/models", []byte(payload))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if len(mgr.Models()) != 0 {
		t.Fatalf("failed registration should be removed")
	}
}

func TestE2E_ConfigurePropagates(t *testing.T) {
	dir := createModelStore(t, "resnet18/")
	srv, _ := newServerForDir(t, dir)

	resp, body := httpDo(t, http.MethodPut, srv.URL+"/models/resnet18", []byte(`{"batch_size":4,"max_batch_delay_ms":20}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var v types.ModelView
	decode(t, body, &v)
	if v.BatchSize != 4 || v.MaxBatchDelayMS != 20 {
		t.Fatalf("view=%+v", v)
	}
	if v.ConfigVersion == 0 || v.AppliedConfigVersion != v.ConfigVersion {
		t.Fatalf("config not propagated: %+v", v)
	}

	resp, _ = httpDo(t, http.MethodPut, srv.URL+"/models/resnet18", []byte(`{"batch_size":0}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid batch status=%d", resp.StatusCode)
	}
}

func TestE2E_UnregisterAllVersions(t *testing.T) {
	dir := createModelStore(t, "bert/")
	srv, mgr := newServerForDir(t, t.TempDir())
	for _, v := range []string{"1", "2"} {
		payload := fmt.Sprintf(`{"id":"bert","version":%q,"url":"file://%s/"}`, v, filepath.ToSlash(filepath.Join(dir, "bert")))
		if resp, body := httpDo(t, http.MethodPost, srv.URL+"/models", []byte(payload)); resp.StatusCode != http.StatusOK {
			t.Fatalf("register v%s status=%d body=%s", v, resp.StatusCode, body)
		}
	}
	resp, _ := httpDo(t, http.MethodDelete, srv.URL+"/models/bert", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d", resp.StatusCode)
	}
	if len(mgr.Models()) != 0 {
		t.Fatalf("models left: %v", mgr.Models())
	}
}

func TestE2E_MetricsExposed(t *testing.T) {
	srv, _ := newServerForDir(t, createModelStore(t, "resnet18/"))
	httpDo(t, http.MethodGet, srv.URL+"/models", nil)
	resp, body := httpDo(t, http.MethodGet, srv.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	for _, name := range []string{"modelreg_http_requests_total", "modelreg_manager_models", "modelreg_model_loads_total"} {
		if !bytes.Contains(body, []byte(name)) {
			t.Fatalf("metrics missing %s", name)
		}
	}
}
