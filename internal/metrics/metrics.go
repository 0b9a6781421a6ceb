package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"TacticalSentinel/internal/model"
)

// Registry holds the Prometheus collectors for allocation runs.
type Registry struct {
	reg *prometheus.Registry

	Runs          *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	TrendScore    *prometheus.GaugeVec
	Scalar        *prometheus.GaugeVec
	TargetWeight  *prometheus.GaugeVec
	RatesRising   prometheus.Gauge
	LastSuccess   prometheus.Gauge
}

// NewRegistry creates and registers every collector on a private registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tactical_runs_total",
				Help: "Allocation runs by result",
			},
			[]string{"result"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tactical_fetch_duration_seconds",
				Help:    "Price history fetch duration per symbol",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"symbol", "result"},
		),
		TrendScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tactical_trend_score",
				Help: "Latest trend score per sleeve",
			},
			[]string{"sleeve"},
		),
		Scalar: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tactical_exposure_scalar",
				Help: "Latest exposure scalar per sleeve",
			},
			[]string{"sleeve"},
		),
		TargetWeight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tactical_target_weight",
				Help: "Latest target weight per instrument, cash included",
			},
			[]string{"instrument"},
		),
		RatesRising: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tactical_rates_rising",
			Help: "1 when the rate regime is rising",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tactical_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
	r.reg.MustRegister(r.Runs, r.FetchDuration, r.TrendScore, r.Scalar, r.TargetWeight, r.RatesRising, r.LastSuccess)
	return r
}

// Gatherer exposes the underlying registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveFetch records one per-symbol fetch.
func (r *Registry) ObserveFetch(symbol string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchDuration.WithLabelValues(symbol, result).Observe(elapsed.Seconds())
}

// ObserveAllocation publishes the latest scores and weights.
func (r *Registry) ObserveAllocation(a *model.Allocation) {
	r.Runs.WithLabelValues("ok").Inc()
	r.LastSuccess.Set(float64(time.Now().Unix()))
	for _, s := range a.Sleeves {
		r.TrendScore.WithLabelValues(string(s.Sleeve)).Set(float64(s.Score))
		r.Scalar.WithLabelValues(string(s.Sleeve)).Set(s.Scalar)
	}
	for _, w := range a.Weights {
		r.TargetWeight.WithLabelValues(w.Symbol).Set(w.Weight)
	}
	if a.Regime.Rising {
		r.RatesRising.Set(1)
	} else {
		r.RatesRising.Set(0)
	}
}

// ObserveFailure counts a failed run.
func (r *Registry) ObserveFailure() {
	r.Runs.WithLabelValues("error").Inc()
}
