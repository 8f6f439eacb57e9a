package manager

import "modelreg/internal/engine"

// SanityCheck reports on the external dependencies of every engine that has
// any. It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() []engine.SanityReport {
	return m.engines.SanityCheck()
}
