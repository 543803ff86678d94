package pulseox

import "go.uber.org/zap"

// An Option configures an Oximeter.
type Option func(o *Oximeter) Option

// Options sets different configuration options and returns the previous
// value of the last option passed.
func (o *Oximeter) Options(options ...Option) Option {
	var old Option
	for _, opt := range options {
		old = opt(o)
	}
	return old
}

// WithConfig replaces the default configuration. It only takes effect when
// passed to New, which builds the pipeline from it.
func WithConfig(cfg Config) Option {
	return func(o *Oximeter) Option {
		old := o.cfg
		o.cfg = cfg
		return WithConfig(old)
	}
}

// WithLogger sets the logger. By default the pipeline is silent.
func WithLogger(l *zap.Logger) Option {
	return func(o *Oximeter) Option {
		old := o.log
		o.log = l
		return WithLogger(old)
	}
}
