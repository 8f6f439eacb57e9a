package manager

import (
	"testing"

	"modelreg/pkg/types"
)

func TestLookupHighestVersion(t *testing.T) {
	m, _, _ := newTestManager(t)
	mustRegister(t, m, types.ModelSpec{ID: "bert", URL: "/b"})
	if info, err := m.Lookup("bert", nil); err != nil || info.String() != "bert" {
		t.Fatalf("Lookup unversioned only: %v %v", info, err)
	}
	for _, v := range []string{"1.2.0", "1.10.0", "1.9"} {
		mustRegister(t, m, types.ModelSpec{ID: "bert", URL: "/b", Version: strptr(v)})
	}
	info, err := m.Lookup("bert", nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.String() != "bert:1.10.0" {
		t.Fatalf("highest version=%s", info)
	}
	info, err = m.Lookup("bert", strptr("1.9"))
	if err != nil || info.String() != "bert:1.9" {
		t.Fatalf("exact lookup: %v %v", info, err)
	}
	if _, err := m.Lookup("bert", strptr("7")); !IsModelNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := m.Lookup("gpt", nil); !IsModelNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	keys := m.Versions("bert")
	want := []string{"bert", "bert:1.2.0", "bert:1.9", "bert:1.10.0"}
	if len(keys) != len(want) {
		t.Fatalf("versions=%v", keys)
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("versions=%v want %v", keys, want)
		}
	}
}

func TestVersionLessFallsBackToStrings(t *testing.T) {
	if !versionLess(vkey("m", "alpha"), vkey("m", "beta")) {
		t.Fatalf("expected lexical order for non-semver versions")
	}
	if !versionLess(key("m"), vkey("m", "")) {
		t.Fatalf("unversioned must sort before an empty version")
	}
	if versionLess(vkey("m", "2"), vkey("m", "10")) == false {
		t.Fatalf("expected numeric order")
	}
}
