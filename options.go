package nodearea

import "github.com/charmbracelet/log"

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the plugin logger. Vetoed operations are logged at debug
// level and failed background operations at warn level.
func WithLogger(logger *log.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConfig replaces the plugin configuration.
func WithConfig(cfg Config) Option {
	return func(p *Plugin) {
		p.config = cfg
	}
}

// WithZoomIntensity overrides the configured wheel zoom step.
func WithZoomIntensity(intensity float64) Option {
	return func(p *Plugin) {
		if intensity > 0 {
			p.config.ZoomIntensity = intensity
		}
	}
}
