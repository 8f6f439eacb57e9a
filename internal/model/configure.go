package model

import (
	"fmt"
	"time"
)

// ConfigVersion increases on every tuning mutation. A consumer that cached
// tuning values is stale when the token moved since it last read them.
func (m *Info) ConfigVersion() uint64 { return m.configVersion.Load() }

func (m *Info) BatchSize() int               { return int(m.batchSize.Load()) }
func (m *Info) MaxBatchDelay() time.Duration { return time.Duration(m.maxBatchDelay.Load()) }
func (m *Info) MaxIdleTime() time.Duration   { return time.Duration(m.maxIdleTime.Load()) }
func (m *Info) QueueSize() int               { return int(m.queueSize.Load()) }

// ConfigureBatch sets batch size and max batch delay and returns m for
// chaining. Installed instances are untouched: a batch size change reaches
// the engine only on the next load of a new device. Callers must propagate
// the change themselves (see ConfigVersion).
func (m *Info) ConfigureBatch(batchSize int, maxBatchDelay time.Duration) (*Info, error) {
	if err := validateBatch(batchSize, maxBatchDelay); err != nil {
		return m, &ConfigError{Model: m.String(), Err: err}
	}
	m.batchSize.Store(int64(batchSize))
	m.maxBatchDelay.Store(int64(maxBatchDelay))
	m.configVersion.Add(1)
	return m, nil
}

// ConfigurePool sets the worker idle time and returns m for chaining.
func (m *Info) ConfigurePool(maxIdleTime time.Duration) (*Info, error) {
	if err := m.SetMaxIdleTime(maxIdleTime); err != nil {
		return m, err
	}
	return m, nil
}

func (m *Info) SetBatchSize(n int) error {
	if err := validateBatch(n, 0); err != nil {
		return &ConfigError{Model: m.String(), Err: err}
	}
	m.batchSize.Store(int64(n))
	m.configVersion.Add(1)
	return nil
}

func (m *Info) SetMaxBatchDelay(d time.Duration) error {
	return m.setNonNegative(&m.maxBatchDelay, "max batch delay", int64(d))
}

func (m *Info) SetMaxIdleTime(d time.Duration) error {
	return m.setNonNegative(&m.maxIdleTime, "max idle time", int64(d))
}

func (m *Info) SetQueueSize(n int) error {
	return m.setNonNegative(&m.queueSize, "queue size", int64(n))
}

func (m *Info) setNonNegative(field interface{ Store(int64) }, name string, v int64) error {
	if err := validateNonNegative(name, v); err != nil {
		return &ConfigError{Model: m.String(), Err: err}
	}
	field.Store(v)
	m.configVersion.Add(1)
	return nil
}

func validateBatch(batchSize int, maxBatchDelay time.Duration) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: batch size %d < 1", ErrInvalidTuning, batchSize)
	}
	return validateNonNegative("max batch delay", int64(maxBatchDelay))
}

func validateNonNegative(name string, v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s %d < 0", ErrInvalidTuning, name, v)
	}
	return nil
}
