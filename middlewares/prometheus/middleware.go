// Package prometheus observes per-request latency as a summary vector
// labelled by path, method and status.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strata-go/strata"
)

const startKey = "prometheus_start"

// MiddlewareBuilder carries the metric identity.
type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

// InitMiddlewareBuilder returns a builder for the given metric identity.
func InitMiddlewareBuilder(namespace, subsystem, name, help string) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

// Build registers the summary vector and produces the middleware unit.
// Registration panics on duplicate metric identity, matching
// prometheus.MustRegister semantics.
func (b *MiddlewareBuilder) Build() *Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      b.Name,
		Help:      b.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"path", "method", "status"})
	prometheus.MustRegister(vector)
	return &Middleware{vector: vector}
}

// Middleware stamps the start time on the request and observes latency in
// the response hook. The vector is concurrency-safe shared state; the start
// time is request-scoped.
type Middleware struct {
	vector *prometheus.SummaryVec
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	req.Set(startKey, time.Now())
	return nil, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	start, ok := req.Get(startKey)
	if !ok {
		// Short-circuited before our request hook ran; nothing to observe.
		return resp, nil
	}
	duration := time.Since(start.(time.Time)).Microseconds()
	m.vector.WithLabelValues(req.Path, req.Method, strconv.Itoa(resp.StatusCode)).Observe(float64(duration))
	return resp, nil
}
