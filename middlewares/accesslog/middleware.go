// Package accesslog emits one structured log line per completed request.
package accesslog

import (
	"encoding/json"
	"time"

	"github.com/strata-go/strata"
	"github.com/strata-go/strata/middlewares/requestid"
)

const startKey = "accesslog_start"

// MiddlewareBuilder configures the access logger.
type MiddlewareBuilder struct {
	logFunc func(log string)
}

// InitMiddlewareBuilder returns a builder logging through the package
// default strata logger.
func InitMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(log string) {
			strata.DefaultLogger().Info("%s", log)
		},
	}
}

// LogFunc overrides the sink receiving the serialized log entries.
func (b *MiddlewareBuilder) LogFunc(fn func(log string)) *MiddlewareBuilder {
	if fn != nil {
		b.logFunc = fn
	}
	return b
}

// Build produces the middleware unit.
func (b *MiddlewareBuilder) Build() *Middleware {
	return &Middleware{logFunc: b.logFunc}
}

// Middleware records the start time on the request and logs on the way out.
// It logs in the response hook so short-circuited requests are covered too.
type Middleware struct {
	logFunc func(log string)
}

type accessLog struct {
	Host       string `json:"host,omitempty"`
	HTTPMethod string `json:"http_method,omitempty"`
	Path       string `json:"path,omitempty"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	RequestID  string `json:"request_id,omitempty"`
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	req.Set(startKey, time.Now())
	return nil, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	entry := accessLog{
		Host:       req.Host,
		HTTPMethod: req.Method,
		Path:       req.Path,
		Status:     resp.StatusCode,
		RequestID:  requestid.FromRequest(req),
	}
	if start, ok := req.Get(startKey); ok {
		entry.DurationMS = time.Since(start.(time.Time)).Milliseconds()
	}
	data, _ := json.Marshal(entry)
	m.logFunc(string(data))
	return resp, nil
}
