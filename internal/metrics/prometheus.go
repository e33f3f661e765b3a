package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Unmatched is the path label of every timing whose name was not registered
// with NewPrometheus.
const Unmatched = "unmatched"

// Prometheus records timings in the http_request_duration_seconds histogram,
// labelled by metric name and status.
type Prometheus struct {
	duration *prometheus.HistogramVec
	names    map[string]struct{}
}

// NewPrometheus registers the request histogram with reg. Only the given
// metric names get a path label of their own; any other name is recorded as
// Unmatched so that arbitrary request paths cannot create new series.
func NewPrometheus(reg prometheus.Registerer, names ...string) *Prometheus {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	return &Prometheus{
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "status"},
		),
		names: known,
	}
}

// Timing implements Sink.
func (p *Prometheus) Timing(name string, d time.Duration, status string) {
	if _, ok := p.names[name]; !ok {
		name = Unmatched
	}
	p.duration.WithLabelValues(name, status).Observe(d.Seconds())
}
