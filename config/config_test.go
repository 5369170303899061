package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "app.toml", `
[pipeline]
debug = true
middleware = ["requestid", "gzip", "cache"]

[server]
timeout = "30s"
port = 8080
`)
	cfg, err := New(WithFile(path))
	require.NoError(t, err)

	assert.True(t, cfg.GetBool("pipeline.debug"))
	assert.Equal(t, []string{"requestid", "gzip", "cache"}, cfg.GetStringSlice("pipeline.middleware"))
	assert.Equal(t, 8080, cfg.GetInt("server.port"))
	assert.Equal(t, "30s", cfg.GetString("server.timeout"))
	assert.Equal(t, float64(30), cfg.GetDuration("server.timeout").Seconds())
	assert.True(t, cfg.Has("server"))
	assert.False(t, cfg.Has("missing.key"))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "app.yaml", `
pipeline:
  debug: false
  middleware:
    - requestid
    - secureheader
`)
	cfg, err := New(WithFile(path))
	require.NoError(t, err)

	p, err := cfg.Pipeline()
	require.NoError(t, err)
	assert.False(t, p.Debug)
	assert.Equal(t, []string{"requestid", "secureheader"}, p.Middleware)
}

func TestPipelineSectionAbsent(t *testing.T) {
	path := writeFile(t, "app.json", `{"other": 1}`)
	cfg, err := New(WithFile(path))
	require.NoError(t, err)

	p, err := cfg.Pipeline()
	require.NoError(t, err)
	assert.Empty(t, p.Middleware)
	assert.False(t, p.Debug)
}

func TestEnvOverride(t *testing.T) {
	path := writeFile(t, "app.toml", `
[pipeline]
debug = false
`)
	cfg, err := New(WithFile(path), WithEnvPrefix("STRATA"))
	require.NoError(t, err)

	t.Setenv("STRATA_PIPELINE_DEBUG", "true")
	assert.True(t, cfg.GetBool("pipeline.debug"))
}

func TestSetCreatesIntermediateMaps(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.Set("pipeline.debug", true)
	assert.True(t, cfg.GetBool("pipeline.debug"))
}

func TestUnknownFormat(t *testing.T) {
	path := writeFile(t, "app.conf", "whatever")
	_, err := New(WithFile(path))
	assert.Error(t, err)
}
