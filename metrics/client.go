package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client records request executions
type Client struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewClient registers the client collectors on reg under namespace
func NewClient(reg prometheus.Registerer, namespace string) (*Client, error) {
	c := &Client{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Executed requests by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from submission to resolution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_in_flight",
			Help:      "Requests submitted to the transport and not yet resolved.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.requests, c.duration, c.inFlight} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Start marks a request in flight. The returned func records its outcome and must be called once.
func (c *Client) Start(method string) func(outcome string) {
	if c == nil {
		return func(string) {}
	}

	start := time.Now()
	c.inFlight.Inc()
	return func(outcome string) {
		c.inFlight.Dec()
		c.requests.WithLabelValues(method, outcome).Inc()
		c.duration.WithLabelValues(method, outcome).Observe(time.Since(start).Seconds())
	}
}

// Rejected counts a request that failed before reaching the transport
func (c *Client) Rejected(method, outcome string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, outcome).Inc()
}
