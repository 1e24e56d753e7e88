package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stewardship/contexts/group-governance/role-stewardship/ports"
)

const namePrefix = "stewardship_"

// Prometheus records coordinator and capability view instrumentation.
type Prometheus struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	transitions       *prometheus.CounterVec
	capabilityLookups *prometheus.CounterVec
}

var _ ports.Metrics = (*Prometheus)(nil)

func NewPrometheus(registry prometheus.Registerer) *Prometheus {
	factory := promauto.With(registry)
	return &Prometheus{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "operations_total",
			Help: "Total number of role stewardship operations by outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    namePrefix + "operation_duration_seconds",
			Help:    "Latency of role stewardship operations including lock wait",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "role_transitions_total",
			Help: "Total number of role holder transitions",
		}, []string{"kind"}),
		capabilityLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "capability_lookups_total",
			Help: "Total number of capability lookups by cache result",
		}, []string{"cache_hit"}),
	}
}

func (p *Prometheus) ObserveOperation(operation string, outcome string, duration time.Duration) {
	p.operations.WithLabelValues(operation, outcome).Inc()
	p.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *Prometheus) RecordTransition(kind string) {
	p.transitions.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordCapabilityLookup(cacheHit bool) {
	p.capabilityLookups.WithLabelValues(strconv.FormatBool(cacheHit)).Inc()
}
