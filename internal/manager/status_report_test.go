package manager

import (
	"testing"

	"modelreg/internal/device"
	"modelreg/pkg/types"
)

func TestStatusAndViews(t *testing.T) {
	m, fe, _ := newTestManager(t)
	fe.fail(device.CPU(), errBoom)
	mustRegister(t, m, types.ModelSpec{ID: "bad", URL: "/bad"})
	mustRegister(t, m, types.ModelSpec{ID: "good", URL: "/good", Version: strptr("1"), Devices: []string{"gpu0"}})
	_ = m.Load(testCtx(t), key("bad"))
	if err := m.Load(testCtx(t), vkey("good", "1")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	st := m.Status()
	if len(st.Models) != 2 || st.ReadyCount != 1 || st.FailedCount != 1 {
		t.Fatalf("status=%+v", st)
	}
	if len(st.Engines) != 1 || st.Engines[0] != "fake" {
		t.Fatalf("engines=%v", st.Engines)
	}
	bad, good := st.Models[0], st.Models[1]
	if bad.ID != "bad" || bad.Status != "FAILED" || bad.Version != nil || len(bad.Devices) != 0 {
		t.Fatalf("bad view=%+v", bad)
	}
	if good.Status != "READY" || good.Version == nil || *good.Version != "1" || len(good.Devices) != 1 || good.Devices[0] != "gpu0" {
		t.Fatalf("good view=%+v", good)
	}
	if good.BatchSize != 1 || good.MaxBatchDelayMS != 100 || good.MaxIdleTimeMS != 60000 || good.QueueSize != 1000 {
		t.Fatalf("good tuning=%+v", good)
	}
	if _, err := m.View(key("nope")); !IsModelNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
