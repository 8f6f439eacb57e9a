package manager

import (
	"sort"

	version "github.com/hashicorp/go-version"

	"modelreg/internal/model"
)

// Lookup finds a model by id. With a version it is an exact match; without
// one it returns the highest registered version of id, where an unversioned
// registration ranks below every versioned one.
func (m *Manager) Lookup(id string, ver *string) (*model.Info, error) {
	if ver != nil {
		return m.Get(model.Key{ID: id, Version: *ver, HasVersion: true})
	}
	m.mu.RLock()
	var best *model.Info
	for k, e := range m.models {
		if k.ID != id {
			continue
		}
		if best == nil || versionLess(best.Key(), k) {
			best = e.info
		}
	}
	m.mu.RUnlock()
	if best == nil {
		return nil, ErrModelNotFound(id)
	}
	return best, nil
}

// Versions lists the registered keys of id in ascending version order.
func (m *Manager) Versions(id string) []model.Key {
	m.mu.RLock()
	var out []model.Key
	for k := range m.models {
		if k.ID == id {
			out = append(out, k)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return versionLess(out[i], out[j]) })
	return out
}

// versionLess orders keys of one id: unversioned first, then semantic
// versions where both parse, falling back to string order.
func versionLess(a, b model.Key) bool {
	if a.HasVersion != b.HasVersion {
		return !a.HasVersion
	}
	if !a.HasVersion {
		return false
	}
	va, errA := version.NewVersion(a.Version)
	vb, errB := version.NewVersion(b.Version)
	if errA == nil && errB == nil && !va.Equal(vb) {
		return va.LessThan(vb)
	}
	return a.Version < b.Version
}
