package manager

import (
	"sync"
	"time"

	"modelreg/internal/device"
	"modelreg/internal/model"
)

// PoolConfig is the snapshot of tuning values handed to the worker pool.
type PoolConfig struct {
	BatchSize     int
	MaxBatchDelay time.Duration
	MaxIdleTime   time.Duration
	QueueSize     int
	// ConfigVersion is the descriptor token the snapshot was taken at.
	ConfigVersion uint64
}

func poolConfigOf(info *model.Info) PoolConfig {
	return PoolConfig{
		BatchSize:     info.BatchSize(),
		MaxBatchDelay: info.MaxBatchDelay(),
		MaxIdleTime:   info.MaxIdleTime(),
		QueueSize:     info.QueueSize(),
		ConfigVersion: info.ConfigVersion(),
	}
}

// OpState is the state of a background operation.
type OpState string

const (
	OpPending OpState = "pending"
	OpDone    OpState = "done"
	OpFailed  OpState = "failed"
)

// entry is a registered model together with what the manager tracks for it.
type entry struct {
	info    *model.Info
	devices []device.Device
	pool    PoolConfig
	// loads counts Load calls that hold the entry.
	loads sync.WaitGroup
}

type operation struct {
	id       string
	model    model.Key
	state    OpState
	err      string
	started  time.Time
	finished time.Time
}
