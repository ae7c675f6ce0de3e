package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the registry's Prometheus collectors. All series are
// aggregates; none carry a user label.
type Metrics struct {
	ValidationsTotal prometheus.Counter
	SweptTotal       prometheus.Counter
	ActiveValidators prometheus.Gauge
	AverageScore     prometheus.Gauge
}

// NewMetrics registers the registry collectors with reg. A nil registerer
// uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ValidationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "runcheck_validations_total",
			Help: "Total validation calls across all validator instances.",
		}),
		SweptTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "runcheck_swept_validators_total",
			Help: "Validator instances removed by expiry sweeps.",
		}),
		ActiveValidators: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runcheck_active_validators",
			Help: "Live validator instances in the registry.",
		}),
		AverageScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runcheck_business_value_score_avg",
			Help: "Average business-value score across live instances.",
		}),
	}
}
