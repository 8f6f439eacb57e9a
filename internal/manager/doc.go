// Package manager owns the set of registered model descriptors and drives
// their lifecycle. It is structured into small files by concern:
//
//   - manager.go: core Manager type, registration, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: PoolConfig and operation state.
//   - errors.go: error types and helpers (IsModelNotFound, IsModelExists).
//   - lookup.go: exact and highest-version lookup.
//   - ensure.go: Load/LoadAsync, concurrent per-device loading.
//   - configure.go: Configure and TriggerUpdates (config propagation).
//   - unload.go: Unregister and Close.
//   - status_report.go: Status and model views.
//   - sanity.go: engine dependency checks.
//
// Descriptors never push configuration changes. The worker-pool layer reads
// PoolConfig, which only moves when TriggerUpdates observes a new config
// version on the descriptor.
package manager
