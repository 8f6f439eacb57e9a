package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelreg/internal/device"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *manager.Manager implements it.
type Service interface {
	List() []types.ModelView
	View(key model.Key) (types.ModelView, error)
	Lookup(id string, version *string) (*model.Info, error)
	Versions(id string) []model.Key
	Register(spec types.ModelSpec) (*model.Info, error)
	Load(ctx context.Context, key model.Key, devices ...device.Device) error
	LoadAsync(key model.Key, devices ...device.Device) (string, error)
	Operation(id string) (types.OperationStatus, error)
	Configure(key model.Key, req types.ConfigureRequest) (*model.Info, error)
	TriggerUpdates(key model.Key) (bool, error)
	Unregister(key model.Key) error
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		origins, methods, headers := corsDefaults()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/models", h.list)
	r.Post("/models", h.register)
	r.Get("/models/{id}", h.describe(false))
	r.Get("/models/{id}/{version}", h.describe(true))
	r.Put("/models/{id}", h.configure(false))
	r.Put("/models/{id}/{version}", h.configure(true))
	r.Delete("/models/{id}", h.unregister(false))
	r.Delete("/models/{id}/{version}", h.unregister(true))
	r.Get("/operations/{id}", h.operation)

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}
