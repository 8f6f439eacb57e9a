package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	modelsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelreg",
			Subsystem: "manager",
			Name:      "models",
			Help:      "Registered models",
		},
	)

	configUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "manager",
			Name:      "config_updates_total",
			Help:      "Configuration changes propagated to the worker pool",
		},
	)

	deviceLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "manager",
			Name:      "device_loads_total",
			Help:      "Device load requests by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(modelsGauge, configUpdatesTotal, deviceLoadsTotal)
}
