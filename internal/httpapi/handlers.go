package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"modelreg/internal/device"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

type handlers struct {
	svc Service
}

// decodeJSON enforces the content type and body limit, then decodes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// size overruns surface as a decode error too; keep the message generic
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// resolve finds the model addressed by the URL. Without a version segment
// the highest registered version is used.
func (h *handlers) resolve(r *http.Request, versioned bool) (*model.Info, error) {
	id := chi.URLParam(r, "id")
	if !versioned {
		return h.svc.Lookup(id, nil)
	}
	v := chi.URLParam(r, "version")
	return h.svc.Lookup(id, &v)
}

// @Summary      List models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /models [get]
func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: h.svc.List()})
}

// @Summary      Describe a model
// @Tags         models
// @Produce      json
// @Param        id       path  string  true   "Model id"
// @Param        version  path  string  false  "Model version"
// @Success      200  {object}  types.ModelView
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{id}/{version} [get]
func (h *handlers) describe(versioned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.resolve(r, versioned)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := h.svc.View(info.Key())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// @Summary      Register a model
// @Description  Registers a model and loads it. With synchronous=false the load runs in the background and 202 is returned with an operation id.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        body  body  types.RegisterRequest  true  "Model"
// @Success      200  {object}  types.RegisterResponse
// @Success      202  {object}  types.RegisterResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      409  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /models [post]
func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSONError(w, http.StatusBadRequest, "url is required")
		return
	}
	info, err := h.svc.Register(req.ModelSpec)
	if err != nil {
		logResult(r, "register", writeError(w, err), start, err)
		return
	}
	key := info.Key()

	if req.Synchronous != nil && !*req.Synchronous {
		opID, err := h.svc.LoadAsync(key)
		if err != nil {
			logResult(r, "register", writeError(w, err), start, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.RegisterResponse{
			Status:      fmt.Sprintf("Model %q registration scheduled.", key.String()),
			OperationID: opID,
		})
		logResult(r, "register", http.StatusAccepted, start, nil)
		return
	}

	// Shutdown or client disconnect stops the wait, not the load.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if err := h.svc.Load(ctx, key); err != nil {
		// a model that cannot load is not left registered
		_ = h.svc.Unregister(key)
		logResult(r, "register", writeError(w, err), start, err)
		return
	}
	v, err := h.svc.View(key)
	if err != nil {
		logResult(r, "register", writeError(w, err), start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RegisterResponse{
		Status: fmt.Sprintf("Model %q registered.", key.String()),
		Model:  &v,
	})
	logResult(r, "register", http.StatusOK, start, nil)
}

// @Summary      Reconfigure a model
// @Description  Applies tuning changes, loads additional devices, then propagates the configuration to the worker pool.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true   "Model id"
// @Param        version  path  string                  false  "Model version"
// @Param        body     body  types.ConfigureRequest  true   "Changes"
// @Success      200  {object}  types.ModelView
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{id}/{version} [put]
func (h *handlers) configure(versioned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.ConfigureRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		info, err := h.resolve(r, versioned)
		if err != nil {
			writeError(w, err)
			return
		}
		key := info.Key()
		devs := make([]device.Device, 0, len(req.Devices))
		for _, s := range req.Devices {
			d, err := device.Parse(s)
			if err != nil {
				err = &model.ConfigError{Model: key.String(), Err: err}
				logResult(r, "configure", writeError(w, err), start, err)
				return
			}
			devs = append(devs, d)
		}
		if _, err := h.svc.Configure(key, req); err != nil {
			logResult(r, "configure", writeError(w, err), start, err)
			return
		}
		if len(devs) > 0 {
			ctx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			if err := h.svc.Load(ctx, key, devs...); err != nil {
				logResult(r, "configure", writeError(w, err), start, err)
				return
			}
		}
		if _, err := h.svc.TriggerUpdates(key); err != nil {
			logResult(r, "configure", writeError(w, err), start, err)
			return
		}
		v, err := h.svc.View(key)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
		logResult(r, "configure", http.StatusOK, start, nil)
	}
}

// @Summary      Unregister a model
// @Description  Without a version every registered version of the id is removed.
// @Tags         models
// @Produce      json
// @Param        id       path  string  true   "Model id"
// @Param        version  path  string  false  "Model version"
// @Success      200  {object}  types.MessageResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{id}/{version} [delete]
func (h *handlers) unregister(versioned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := chi.URLParam(r, "id")
		var keys []model.Key
		if versioned {
			keys = []model.Key{{ID: id, Version: chi.URLParam(r, "version"), HasVersion: true}}
		} else {
			keys = h.svc.Versions(id)
		}
		if len(keys) == 0 {
			keys = []model.Key{{ID: id}}
		}
		for _, k := range keys {
			if err := h.svc.Unregister(k); err != nil {
				logResult(r, "unregister", writeError(w, err), start, err)
				return
			}
		}
		name := keys[0].String()
		if len(keys) > 1 {
			name = id
		}
		writeJSON(w, http.StatusOK, types.MessageResponse{Status: fmt.Sprintf("Model %q unregistered.", name)})
		logResult(r, "unregister", http.StatusOK, start, nil)
	}
}

// @Summary      Background operation status
// @Tags         operations
// @Produce      json
// @Param        id  path  string  true  "Operation id"
// @Success      200  {object}  types.OperationStatus
// @Failure      404  {object}  types.ErrorResponse
// @Router       /operations/{id} [get]
func (h *handlers) operation(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Operation(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
