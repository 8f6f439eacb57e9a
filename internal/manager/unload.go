package manager

import (
	"errors"

	"github.com/rs/zerolog/log"

	"modelreg/internal/model"
)

// Unregister removes the model and closes its instances. It waits for Load
// calls holding the model and for engine loads still in flight, so no
// instance outlives the registration. The model is gone even when closing
// fails; the close error is returned.
func (m *Manager) Unregister(key model.Key) error {
	m.mu.Lock()
	e, ok := m.models[key]
	if !ok {
		m.mu.Unlock()
		return ErrModelNotFound(key.String())
	}
	delete(m.models, key)
	n := len(m.models)
	m.mu.Unlock()
	modelsGauge.Set(float64(n))

	e.loads.Wait()
	err := e.info.Close()
	fields := map[string]any{}
	if err != nil {
		fields["error"] = err.Error()
	}
	log.Info().Str("model", key.String()).Msg("model unregistered")
	m.publish(EventUnregister, key, fields)
	return err
}

// Close unregisters every model, attempting all of them.
func (m *Manager) Close() error {
	var errs []error
	for _, info := range m.Models() {
		if err := m.Unregister(info.Key()); err != nil && !IsModelNotFound(err) {
			log.Warn().Err(err).Str("model", info.String()).Msg("close model failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
