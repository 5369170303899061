package strata

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStream yields n chunks and counts how many have been produced,
// standing in for an expensive or unbounded source.
func countingStream(n int, produced *int) Stream {
	i := 0
	return func() ([]byte, bool) {
		if i >= n {
			return nil, false
		}
		*produced++
		chunk := []byte{byte(i)}
		i++
		return chunk, true
	}
}

func TestMapIsLazySingleChunkLookahead(t *testing.T) {
	var produced int
	src := countingStream(1000, &produced)

	mapped := src.Map(func(chunk []byte) []byte {
		return append([]byte("x"), chunk...)
	})

	// Wrapping must not touch the source at all.
	require.Equal(t, 0, produced)

	// Each pull materializes exactly one underlying chunk: never more than
	// one chunk ahead of the consumer.
	for i := 1; i <= 10; i++ {
		chunk, ok := mapped()
		require.True(t, ok)
		assert.Equal(t, []byte{'x', byte(i - 1)}, chunk)
		assert.Equal(t, i, produced)
	}
}

func TestMapTransformsAllChunks(t *testing.T) {
	s := FromChunks([]byte("a"), []byte("b"), []byte("c")).Map(bytes.ToUpper)
	collected := s.Collect()
	require.Len(t, collected, 3)
	assert.Equal(t, []byte("A"), collected[0])
	assert.Equal(t, []byte("C"), collected[2])
}

func TestFromChunksExhausts(t *testing.T) {
	s := FromChunks([]byte("one"), []byte("two"))
	c1, ok := s()
	require.True(t, ok)
	assert.Equal(t, []byte("one"), c1)
	_, ok = s()
	require.True(t, ok)
	_, ok = s()
	assert.False(t, ok)
	// Exhausted streams stay exhausted.
	_, ok = s()
	assert.False(t, ok)
}

func TestFromReaderChunks(t *testing.T) {
	s := FromReader(strings.NewReader("abcdefgh"), 3)
	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "abcdefgh", buf.String())
}

func TestWriteToWritesChunkPerChunk(t *testing.T) {
	var writes int
	w := writerFunc(func(p []byte) (int, error) {
		writes++
		return len(p), nil
	})
	_, err := FromChunks([]byte("a"), []byte("b"), []byte("c")).WriteTo(w)
	require.NoError(t, err)
	assert.Equal(t, 3, writes)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
