// Package config loads pipeline configuration from TOML, YAML or JSON
// files, with environment overrides, hot reload and typed unmarshalling.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Config holds a loaded configuration tree. Keys are addressed with dotted
// paths ("pipeline.debug"). Safe for concurrent reads; Set and reloads take
// the write lock.
type Config struct {
	mu        sync.RWMutex
	data      map[string]any
	file      string
	format    string
	envPrefix string
	watcher   *fsnotify.Watcher
	listeners []func()
}

// Option configures New.
type Option func(*Config)

// WithFile sets the configuration file; the format is inferred from the
// extension (.toml, .yaml/.yml, .json).
func WithFile(file string) Option {
	return func(c *Config) {
		c.file = file
		switch strings.ToLower(filepath.Ext(file)) {
		case ".toml":
			c.format = "toml"
		case ".yaml", ".yml":
			c.format = "yaml"
		case ".json":
			c.format = "json"
		}
	}
}

// WithFormat forces the file format, overriding extension inference.
func WithFormat(format string) Option {
	return func(c *Config) { c.format = format }
}

// WithEnvPrefix enables environment overrides: PREFIX_PIPELINE_DEBUG
// overrides "pipeline.debug".
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.envPrefix = prefix }
}

// New builds a Config and loads the file if one was configured.
func New(opts ...Option) (*Config, error) {
	c := &Config{data: make(map[string]any)}
	for _, opt := range opts {
		opt(c)
	}
	if c.file != "" {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load reads and parses the configuration file, replacing the current tree.
func (c *Config) Load() error {
	raw, err := os.ReadFile(c.file)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", c.file, err)
	}

	data := make(map[string]any)
	switch c.format {
	case "toml":
		err = toml.Unmarshal(raw, &data)
	case "yaml":
		err = yaml.Unmarshal(raw, &data)
	case "json":
		err = json.Unmarshal(raw, &data)
	default:
		return fmt.Errorf("config: unknown format %q for %s", c.format, c.file)
	}
	if err != nil {
		return fmt.Errorf("config: parsing %s: %w", c.file, err)
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

// Watch reloads the file on change and notifies OnReload listeners. It
// requires a configured file and runs until Close.
func (c *Config) Watch() error {
	if c.file == "" {
		return fmt.Errorf("config: no file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(c.file)); err != nil {
		watcher.Close()
		return fmt.Errorf("config: watching %s: %w", c.file, err)
	}
	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(c.file) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := c.Load(); err != nil {
					continue
				}
				c.mu.RLock()
				listeners := append([]func(){}, c.listeners...)
				c.mu.RUnlock()
				for _, fn := range listeners {
					fn()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// OnReload registers a listener invoked after each successful reload.
func (c *Config) OnReload(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Close stops watching.
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// Get returns the value at the dotted key path. Environment overrides, when
// enabled, win over file values.
func (c *Config) Get(key string) (any, bool) {
	if c.envPrefix != "" {
		envKey := c.envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if v, ok := os.LookupEnv(envKey); ok {
			return v, true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var cur any = c.data
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes a value at the dotted key path, creating intermediate maps.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	parts := strings.Split(key, ".")
	m := c.data
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Has reports whether the key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// GetString returns the key as a string, or "".
func (c *Config) GetString(key string) string {
	v, ok := c.Get(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetInt returns the key as an int, or 0.
func (c *Config) GetInt(key string) int {
	v, ok := c.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// GetBool returns the key as a bool, or false.
func (c *Config) GetBool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}

// GetDuration returns the key as a time.Duration, parsing strings like
// "30s", or 0.
func (c *Config) GetDuration(key string) time.Duration {
	v, ok := c.Get(key)
	if !ok {
		return 0
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case int:
		return time.Duration(d)
	case int64:
		return time.Duration(d)
	case string:
		parsed, _ := time.ParseDuration(d)
		return parsed
	}
	return 0
}

// GetStringSlice returns the key as a []string, or nil.
func (c *Config) GetStringSlice(key string) []string {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

// Unmarshal decodes the subtree at key into v via mapstructure. An empty
// key decodes the whole tree.
func (c *Config) Unmarshal(key string, v any) error {
	var src any
	if key == "" {
		c.mu.RLock()
		src = c.data
		c.mu.RUnlock()
	} else {
		var ok bool
		src, ok = c.Get(key)
		if !ok {
			return fmt.Errorf("config: key %q not found", key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(src)
}
