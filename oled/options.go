package oled

import "go.uber.org/zap"

// An Option configures a display.
type Option func(d *Display) Option

// OnBus can be used to specify the I²C bus name ("/dev/i2c-1", "I2C1", "1").
// By default, the bus name is "", which selects the first available bus.
func OnBus(name string) Option {
	return func(d *Display) Option {
		old := d.busName
		d.busName = name
		return OnBus(old)
	}
}

// WithLogger sets the logger. By default the display is silent.
func WithLogger(l *zap.Logger) Option {
	return func(d *Display) Option {
		old := d.log
		d.log = l
		return WithLogger(old)
	}
}
