package config

// Pipeline is the configuration surface of the middleware engine: the
// ordered list of middleware identifiers, each resolvable to a constructible
// unit, plus the debug switch controlling opt-out diagnostics.
type Pipeline struct {
	Debug      bool     `mapstructure:"debug"`
	Middleware []string `mapstructure:"middleware"`
}

// Pipeline decodes the "pipeline" section.
func (c *Config) Pipeline() (Pipeline, error) {
	var p Pipeline
	if !c.Has("pipeline") {
		return p, nil
	}
	err := c.Unmarshal("pipeline", &p)
	return p, err
}
