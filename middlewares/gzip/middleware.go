// Package gzip compresses response bodies for clients that accept it.
// Materialized bodies are compressed in place; streaming bodies are wrapped
// with a lazy transform that compresses one chunk per pull, so unbounded
// streams are never drained.
package gzip

import (
	"bytes"
	"compress/gzip"
	"strings"

	"github.com/strata-go/strata"
)

// Options configures the middleware.
type Options struct {
	// Level is a compress/gzip level; 0 means gzip.DefaultCompression.
	Level int
	// MinSize is the smallest materialized body worth compressing.
	MinSize int
}

// Middleware rewrites the response body in the response hook.
type Middleware struct {
	level   int
	minSize int
}

// New builds the middleware.
func New(options Options) *Middleware {
	level := options.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	minSize := options.MinSize
	if minSize <= 0 {
		minSize = 1024
	}
	return &Middleware{level: level, minSize: minSize}
}

// Factory adapts default options for a middleware registry.
func Factory() (strata.Unit, error) {
	return New(Options{}), nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	if !acceptsGzip(req) || resp.Header.Get("Content-Encoding") != "" {
		return resp, nil
	}

	switch resp.Kind() {
	case strata.KindMaterialized:
		body := resp.Body()
		if len(body) < m.minSize {
			return resp, nil
		}
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, m.level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(body); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		resp.SetBody(buf.Bytes())
	case strata.KindStreaming:
		resp.SetStream(compressStream(resp.Stream(), m.level))
	default:
		return resp, nil
	}

	resp.Header.Set("Content-Encoding", "gzip")
	resp.Header.Add("Vary", "Accept-Encoding")
	resp.Header.Del("Content-Length")
	return resp, nil
}

// compressStream wraps the original sequence lazily: each pull takes one
// chunk from the source, compresses it, flushes, and yields the compressed
// bytes. The trailing gzip footer is emitted as a final chunk.
func compressStream(src strata.Stream, level int) strata.Stream {
	var buf bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&buf, level)
	done := false
	return func() ([]byte, bool) {
		if done {
			return nil, false
		}
		for {
			chunk, ok := src()
			if !ok {
				zw.Close()
				done = true
				if buf.Len() == 0 {
					return nil, false
				}
				return flushBuf(&buf), true
			}
			if _, err := zw.Write(chunk); err != nil {
				done = true
				return nil, false
			}
			if err := zw.Flush(); err != nil {
				done = true
				return nil, false
			}
			if buf.Len() > 0 {
				return flushBuf(&buf), true
			}
		}
	}
}

func flushBuf(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	buf.Reset()
	return out
}

func acceptsGzip(req *strata.Request) bool {
	return strings.Contains(req.Header.Get("Accept-Encoding"), "gzip")
}
