package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-go/strata"
)

func TestMissThenHit(t *testing.T) {
	m := New(time.Minute)

	req := strata.NewRequest(http.MethodGet, "/articles/1")
	short, err := m.ProcessRequest(req)
	require.NoError(t, err)
	assert.Nil(t, short)

	resp := strata.New(http.StatusOK, []byte("article one"))
	resp.Header.Set("Content-Type", "text/plain")
	_, err = m.ProcessResponse(req, resp)
	require.NoError(t, err)

	again := strata.NewRequest(http.MethodGet, "/articles/1")
	cached, err := m.ProcessRequest(again)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, http.StatusOK, cached.StatusCode)
	assert.Equal(t, []byte("article one"), cached.Body())
	assert.Equal(t, "text/plain", cached.Header.Get("Content-Type"))
	assert.Equal(t, "HIT", cached.Header.Get(HitHeader))

	hits, misses := m.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestHitNotRestored(t *testing.T) {
	m := New(time.Minute)

	req := strata.NewRequest(http.MethodGet, "/articles/1")
	_, err := m.ProcessRequest(req)
	require.NoError(t, err)
	_, err = m.ProcessResponse(req, strata.New(http.StatusOK, []byte("v1")))
	require.NoError(t, err)

	// A served hit must not be written back; mutate the hit response and
	// check the stored copy is untouched.
	again := strata.NewRequest(http.MethodGet, "/articles/1")
	cached, err := m.ProcessRequest(again)
	require.NoError(t, err)
	require.NotNil(t, cached)
	cached.SetBody([]byte("mutated"))
	_, err = m.ProcessResponse(again, cached)
	require.NoError(t, err)

	third := strata.NewRequest(http.MethodGet, "/articles/1")
	fromStore, err := m.ProcessRequest(third)
	require.NoError(t, err)
	require.NotNil(t, fromStore)
	assert.Equal(t, []byte("v1"), fromStore.Body())
}

func TestIgnoresNonGET(t *testing.T) {
	m := New(time.Minute)

	req := strata.NewRequest(http.MethodPost, "/articles")
	short, err := m.ProcessRequest(req)
	require.NoError(t, err)
	assert.Nil(t, short)

	_, err = m.ProcessResponse(req, strata.New(http.StatusCreated, []byte("new")))
	require.NoError(t, err)

	get := strata.NewRequest(http.MethodGet, "/articles")
	short, err = m.ProcessRequest(get)
	require.NoError(t, err)
	assert.Nil(t, short)
}

func TestSkipsNon2xxAndStreaming(t *testing.T) {
	m := New(time.Minute)

	req := strata.NewRequest(http.MethodGet, "/missing")
	_, err := m.ProcessRequest(req)
	require.NoError(t, err)
	_, err = m.ProcessResponse(req, strata.New(http.StatusNotFound, []byte("nope")))
	require.NoError(t, err)

	again := strata.NewRequest(http.MethodGet, "/missing")
	short, err := m.ProcessRequest(again)
	require.NoError(t, err)
	assert.Nil(t, short)

	streamReq := strata.NewRequest(http.MethodGet, "/events")
	_, err = m.ProcessRequest(streamReq)
	require.NoError(t, err)
	streaming := strata.NewStreaming(http.StatusOK, strata.FromChunks([]byte("tick")))
	_, err = m.ProcessResponse(streamReq, streaming)
	require.NoError(t, err)

	streamAgain := strata.NewRequest(http.MethodGet, "/events")
	short, err = m.ProcessRequest(streamAgain)
	require.NoError(t, err)
	assert.Nil(t, short)
}

func TestCustomKeyFunc(t *testing.T) {
	m := New(time.Minute, WithKeyFunc(PathAndHeaderKey("Accept-Language")))

	en := strata.NewRequest(http.MethodGet, "/home")
	en.Header.Set("Accept-Language", "en")
	_, err := m.ProcessRequest(en)
	require.NoError(t, err)
	_, err = m.ProcessResponse(en, strata.New(http.StatusOK, []byte("hello")))
	require.NoError(t, err)

	fr := strata.NewRequest(http.MethodGet, "/home")
	fr.Header.Set("Accept-Language", "fr")
	short, err := m.ProcessRequest(fr)
	require.NoError(t, err)
	assert.Nil(t, short)

	enAgain := strata.NewRequest(http.MethodGet, "/home")
	enAgain.Header.Set("Accept-Language", "en")
	cached, err := m.ProcessRequest(enAgain)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, []byte("hello"), cached.Body())
}

func TestClear(t *testing.T) {
	m := New(time.Minute)

	req := strata.NewRequest(http.MethodGet, "/a")
	_, err := m.ProcessRequest(req)
	require.NoError(t, err)
	_, err = m.ProcessResponse(req, strata.New(http.StatusOK, []byte("a")))
	require.NoError(t, err)

	m.Clear()

	again := strata.NewRequest(http.MethodGet, "/a")
	short, err := m.ProcessRequest(again)
	require.NoError(t, err)
	assert.Nil(t, short)
}
