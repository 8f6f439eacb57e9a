package model

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "model",
			Name:      "loads_total",
			Help:      "Engine load calls by engine and result",
		},
		[]string{"engine", "result"},
	)

	loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelreg",
			Subsystem: "model",
			Name:      "load_duration_seconds",
			Help:      "Duration of engine load calls in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"engine"},
	)

	instanceClosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "model",
			Name:      "instance_closes_total",
			Help:      "Closed model instances by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, loadDuration, instanceClosesTotal)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
