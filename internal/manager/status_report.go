package manager

import (
	"time"

	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// View describes the model registered under key.
func (m *Manager) View(key model.Key) (types.ModelView, error) {
	m.mu.RLock()
	e, ok := m.models[key]
	var applied uint64
	if ok {
		applied = e.pool.ConfigVersion
	}
	m.mu.RUnlock()
	if !ok {
		return types.ModelView{}, ErrModelNotFound(key.String())
	}
	return viewOf(e.info, applied), nil
}

func viewOf(info *model.Info, applied uint64) types.ModelView {
	v := types.ModelView{
		ID:                   info.ID(),
		URL:                  info.URL(),
		Engine:               info.EngineName(),
		Status:               string(info.Status()),
		BatchSize:            info.BatchSize(),
		MaxBatchDelayMS:      info.MaxBatchDelay().Milliseconds(),
		MaxIdleTimeMS:        info.MaxIdleTime().Milliseconds(),
		QueueSize:            info.QueueSize(),
		ConfigVersion:        info.ConfigVersion(),
		AppliedConfigVersion: applied,
	}
	if ver, ok := info.Version(); ok {
		v.Version = &ver
	}
	devs := info.Devices()
	v.Devices = make([]string, 0, len(devs))
	for _, d := range devs {
		v.Devices = append(v.Devices, d.Name())
	}
	return v
}

// List returns views of every registered model ordered by display name.
func (m *Manager) List() []types.ModelView {
	infos := m.Models()
	out := make([]types.ModelView, 0, len(infos))
	for _, info := range infos {
		v, err := m.View(info.Key())
		if err != nil {
			// unregistered concurrently
			continue
		}
		out = append(out, v)
	}
	return out
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	views := m.List()
	resp := types.StatusResponse{
		Models:            views,
		PendingOperations: m.pendingOps(),
		Engines:           m.engines.Names(),
		UptimeSeconds:     int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:    time.Now().Unix(),
		LoadsTotal:        m.loadsTotal.Load(),
	}
	for _, v := range views {
		switch model.Status(v.Status) {
		case model.StatusReady:
			resp.ReadyCount++
		case model.StatusFailed:
			resp.FailedCount++
		}
	}
	m.mu.RLock()
	resp.LastError = m.lastErr
	m.mu.RUnlock()
	return resp
}
