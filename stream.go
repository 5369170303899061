package strata

import "io"

// Stream is a lazy sequence of content chunks, pulled one at a time. A call
// produces the next chunk and true, or nil and false once the sequence is
// exhausted. Length may be unknown or unbounded, so a Stream must never be
// drained eagerly by a transforming hook; wrap it with Map instead.
//
// A Stream is single-consumer: calls are not safe for concurrent use.
type Stream func() (chunk []byte, ok bool)

// FromChunks builds a stream over a fixed set of chunks.
func FromChunks(chunks ...[]byte) Stream {
	i := 0
	return func() ([]byte, bool) {
		if i >= len(chunks) {
			return nil, false
		}
		c := chunks[i]
		i++
		return c, true
	}
}

// FromReader builds a stream that reads up to size bytes per chunk. The
// reader is consumed on demand, one chunk per pull.
func FromReader(r io.Reader, size int) Stream {
	if size <= 0 {
		size = 4096
	}
	done := false
	return func() ([]byte, bool) {
		if done {
			return nil, false
		}
		buf := make([]byte, size)
		n, err := r.Read(buf)
		if err != nil {
			done = true
			if c, ok := r.(io.Closer); ok {
				c.Close()
			}
		}
		if n == 0 {
			return nil, false
		}
		return buf[:n], true
	}
}

// Map wraps the stream so that each pull takes exactly one chunk from the
// underlying sequence and yields its transformed form. No chunk beyond the
// one being yielded is ever materialized, which keeps unbounded streams
// safe to transform.
func (s Stream) Map(fn func(chunk []byte) []byte) Stream {
	return func() ([]byte, bool) {
		c, ok := s()
		if !ok {
			return nil, false
		}
		return fn(c), true
	}
}

// WriteTo drains the stream into w, one chunk per write.
func (s Stream) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		chunk, ok := s()
		if !ok {
			return written, nil
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

// Collect drains the stream into memory. Only ever appropriate for bounded
// streams, e.g. in tests.
func (s Stream) Collect() [][]byte {
	var out [][]byte
	for {
		chunk, ok := s()
		if !ok {
			return out
		}
		out = append(out, chunk)
	}
}
