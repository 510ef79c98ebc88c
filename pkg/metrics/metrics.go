package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every collector the server exposes on /metrics.
type Registry struct {
	Reg *prometheus.Registry

	SolvesRecorded   *prometheus.CounterVec
	SolveSeconds     prometheus.Histogram
	TimerState       *prometheus.GaugeVec
	ScrambleRequests *prometheus.CounterVec
	SolverRequests   *prometheus.CounterVec
	SettingsChanges  *prometheus.CounterVec
	WorkerJobs       *prometheus.CounterVec
	WSClients        prometheus.Gauge
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		Reg: reg,
		SolvesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azcube",
			Name:      "solves_recorded_total",
			Help:      "Recorded attempts by penalty.",
		}, []string{"penalty"}),
		SolveSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "azcube",
			Name:      "solve_seconds",
			Help:      "Raw solve times of non-DNF attempts.",
			Buckets:   []float64{5, 7.5, 10, 12.5, 15, 20, 30, 45, 60, 120},
		}),
		TimerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "azcube",
			Name:      "timer_state",
			Help:      "1 for the state the timer is in.",
		}, []string{"state"}),
		ScrambleRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azcube",
			Name:      "scramble_requests_total",
			Help:      "Scrambles served, by source (remote, local, fallback).",
		}, []string{"source"}),
		SolverRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azcube",
			Name:      "solver_requests_total",
			Help:      "Cube solver calls by outcome.",
		}, []string{"outcome"}),
		SettingsChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azcube",
			Name:      "settings_changes_total",
			Help:      "Settings changes by kind and origin.",
		}, []string{"kind", "origin"}),
		WorkerJobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azcube",
			Name:      "worker_jobs_total",
			Help:      "Background jobs by key and outcome.",
		}, []string{"key", "outcome"}),
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "azcube",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients on this instance.",
		}),
	}
}
