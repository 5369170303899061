package strata

import (
	"errors"
	"fmt"
)

// Factory constructs one middleware unit. It takes no arguments; a unit that
// needs process-wide configuration reads it itself. Returning ErrNotUsed
// (possibly wrapped) opts the unit out of the pipeline; any other error is
// fatal to startup.
type Factory func() (Unit, error)

// NamedFactory pairs a factory with the identifier it was configured under.
type NamedFactory struct {
	Name string
	New  Factory
}

// FactoriesFromNames resolves an ordered list of configured middleware
// identifiers against a lookup table, once, at startup. An unknown
// identifier is a ConstructionError.
func FactoriesFromNames(names []string, lookup map[string]Factory) ([]NamedFactory, error) {
	out := make([]NamedFactory, 0, len(names))
	for _, name := range names {
		f, ok := lookup[name]
		if !ok {
			return nil, &ConstructionError{Unit: name, Err: errors.New("no factory registered for identifier")}
		}
		out = append(out, NamedFactory{Name: name, New: f})
	}
	return out, nil
}

// Registry is the ordered, immutable list of constructed middleware units.
// It is built exactly once per process; its order equals the configured
// order minus the units that opted out.
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	name string
	unit Unit
	caps capability
}

// RegistryOption configures BuildRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	log   Logger
	debug bool
}

// WithLogger directs registry diagnostics to the given logger instead of the
// package default.
func WithLogger(log Logger) RegistryOption {
	return func(c *registryConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDebug enables the opt-out diagnostics emitted when a factory returns
// ErrNotUsed.
func WithDebug(debug bool) RegistryOption {
	return func(c *registryConfig) { c.debug = debug }
}

// BuildRegistry invokes each factory in order and assembles the registry.
// A factory returning ErrNotUsed omits its unit; any other error aborts with
// a ConstructionError, and no partial registry is returned. Each constructed
// unit's capability set is probed here, once.
func BuildRegistry(factories []NamedFactory, opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{log: DefaultLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := make([]registryEntry, 0, len(factories))
	for _, f := range factories {
		unit, err := f.New()
		if err != nil {
			if errors.Is(err, ErrNotUsed) {
				if cfg.debug {
					cfg.log.Debug("middleware %q not used, omitted from chain", f.Name)
				}
				continue
			}
			return nil, &ConstructionError{Unit: f.Name, Err: err}
		}
		if unit == nil {
			return nil, &ConstructionError{Unit: f.Name, Err: errors.New("factory returned nil unit")}
		}
		caps := capabilitiesOf(unit)
		if caps == 0 {
			cfg.log.Warn("middleware %q implements no hooks", f.Name)
		}
		entries = append(entries, registryEntry{name: f.Name, unit: unit, caps: caps})
	}
	return &Registry{entries: entries}, nil
}

// Len reports the number of registered units.
func (r *Registry) Len() int { return len(r.entries) }

// Names returns the registered unit names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// String describes the registry for diagnostics.
func (r *Registry) String() string {
	return fmt.Sprintf("strata.Registry(%d units)", len(r.entries))
}
