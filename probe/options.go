package probe

import "go.uber.org/zap"

// An Option configures a probe.
type Option func(d *Device) Option

// OnBus can be used to specify the I²C bus name ("/dev/i2c-2", "I2C2", "2").
// By default, the bus name is "", which selects the first available bus.
func OnBus(name string) Option {
	return func(d *Device) Option {
		old := d.busName
		d.busName = name
		return OnBus(old)
	}
}

// OnAddr can be used to specify an alternative ADC I²C address.
// By default, the address is 0x48.
func OnAddr(addr uint16) Option {
	return func(d *Device) Option {
		old := d.addr
		d.addr = addr
		return OnAddr(old)
	}
}

// WithPins sets the GPIO pin names driving the red and IR LEDs.
// By default, GPIO21 and GPIO20.
func WithPins(red, ir string) Option {
	return func(d *Device) Option {
		oldRed, oldIR := d.redPin, d.irPin
		d.redPin = red
		d.irPin = ir
		return WithPins(oldRed, oldIR)
	}
}

// WithLogger sets the logger. By default the probe is silent.
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) Option {
		old := d.log
		d.log = l
		return WithLogger(old)
	}
}
