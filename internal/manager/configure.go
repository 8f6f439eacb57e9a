package manager

import (
	"time"

	"github.com/rs/zerolog/log"

	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// Configure applies the non-nil fields of req to the descriptor. Nothing is
// propagated: PoolConfig keeps its old values until TriggerUpdates.
func (m *Manager) Configure(key model.Key, req types.ConfigureRequest) (*model.Info, error) {
	info, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	if req.BatchSize != nil || req.MaxBatchDelayMS != nil {
		bs, delay := info.BatchSize(), info.MaxBatchDelay()
		if req.BatchSize != nil {
			bs = *req.BatchSize
		}
		if req.MaxBatchDelayMS != nil {
			delay = time.Duration(*req.MaxBatchDelayMS) * time.Millisecond
		}
		if _, err := info.ConfigureBatch(bs, delay); err != nil {
			return nil, err
		}
	}
	if req.MaxIdleTimeMS != nil {
		if _, err := info.ConfigurePool(time.Duration(*req.MaxIdleTimeMS) * time.Millisecond); err != nil {
			return nil, err
		}
	}
	if req.QueueSize != nil {
		if err := info.SetQueueSize(*req.QueueSize); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// TriggerUpdates propagates descriptor configuration to PoolConfig when the
// descriptor's config version moved. It reports whether anything changed.
func (m *Manager) TriggerUpdates(key model.Key) (bool, error) {
	m.mu.Lock()
	e, ok := m.models[key]
	if !ok {
		m.mu.Unlock()
		return false, ErrModelNotFound(key.String())
	}
	if e.info.ConfigVersion() == e.pool.ConfigVersion {
		m.mu.Unlock()
		return false, nil
	}
	prev := e.pool
	e.pool = poolConfigOf(e.info)
	cur := e.pool
	m.mu.Unlock()

	configUpdatesTotal.Inc()
	log.Info().Str("model", key.String()).Uint64("config_version", cur.ConfigVersion).
		Int("batch_size", cur.BatchSize).Dur("max_batch_delay", cur.MaxBatchDelay).
		Dur("max_idle_time", cur.MaxIdleTime).Int("queue_size", cur.QueueSize).Msg("config propagated")
	m.publish(EventConfigUpdated, key, map[string]any{
		"from_version": prev.ConfigVersion,
		"to_version":   cur.ConfigVersion,
	})
	return true, nil
}

// PoolConfig returns the last propagated tuning values of key.
func (m *Manager) PoolConfig(key model.Key) (PoolConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.models[key]
	if !ok {
		return PoolConfig{}, ErrModelNotFound(key.String())
	}
	return e.pool, nil
}
