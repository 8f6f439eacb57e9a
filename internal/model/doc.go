// Package model holds the model descriptor: one logical served model with its
// identity, source URL, engine binding, loading options and tuning values,
// plus the per-device registry of loaded instances and a coarse status.
//
//   - info.go: Info, Config, construction and identity.
//   - load.go: Load/Instance/Close and the per-device loading protocol.
//   - configure.go: tuning getters, setters and the config version token.
//   - naming.go: InferModelNameFromURL.
//   - errors.go: ConfigError, LoadError, NotLoadedError and predicates.
//   - metrics.go: prometheus collectors for loads and closes.
//
// Info never pushes configuration changes anywhere. Callers that cache tuning
// values compare ConfigVersion to notice mutations.
package model
