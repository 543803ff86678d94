// Package probe drives the optical front end: two discrete LEDs (red and
// infrared) strobed over GPIO and a phototransistor read through an ADS1115
// ADC on the I²C bus. It implements the pulseox LightSource and PhotoSampler
// interfaces.
package probe

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/experimental/conn/analog"
	"periph.io/x/periph/experimental/devices/ads1x15"
	"periph.io/x/periph/host"

	"github.com/motwiaska/pulseox"
)

// Device is the optical probe. It is not safe for concurrent use; the
// acquisition loop is its only caller.
type Device struct {
	red   gpio.PinIO
	ir    gpio.PinIO
	photo analog.PinADC
	bus   i2c.BusCloser
	log   *zap.Logger

	redPin  string
	irPin   string
	busName string
	addr    uint16
}

// New opens the GPIO pins and the ADC and returns a ready probe. By default
// the red LED sits on GPIO21, the IR LED on GPIO20, and the ADS1115 on the
// first available I²C bus at address 0x48 with the phototransistor on
// channel 0.
func New(options ...Option) (*Device, error) {
	d := &Device{
		redPin: "GPIO21",
		irPin:  "GPIO20",
		addr:   0x48,
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(d)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("probe: could not initialize host: %w", err)
	}

	if d.red = gpioreg.ByName(d.redPin); d.red == nil {
		return nil, fmt.Errorf("probe: no pin named %q", d.redPin)
	}
	if d.ir = gpioreg.ByName(d.irPin); d.ir == nil {
		return nil, fmt.Errorf("probe: no pin named %q", d.irPin)
	}

	bus, err := i2creg.Open(d.busName)
	if err != nil {
		return nil, fmt.Errorf("probe: could not open I2C bus: %w", err)
	}
	d.bus = bus

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: d.addr})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe: could not initialize ADC: %w", err)
	}

	// 860 Hz is the fastest ADS1115 data rate, well above the strobe rate,
	// so a conversion never straddles a channel switch.
	d.photo, err = adc.PinForChannel(ads1x15.Channel0, 3300*physic.MilliVolt, 860*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe: could not set up ADC channel: %w", err)
	}

	if err := d.AllOff(); err != nil {
		d.Close()
		return nil, err
	}

	d.log.Info("probe ready",
		zap.String("red", d.redPin),
		zap.String("ir", d.irPin),
		zap.Uint16("adc_addr", d.addr))

	return d, nil
}

// SetChannel lights the selected LED and darkens the other. The caller must
// wait out the settle interval before sampling.
func (d *Device) SetChannel(ch pulseox.Channel) {
	var on, off gpio.PinIO
	switch ch {
	case pulseox.ChannelRed:
		on, off = d.red, d.ir
	case pulseox.ChannelIR:
		on, off = d.ir, d.red
	default:
		return
	}

	if err := off.Out(gpio.Low); err != nil {
		d.log.Warn("could not darken LED", zap.Stringer("pin", off), zap.Error(err))
	}
	if err := on.Out(gpio.High); err != nil {
		d.log.Warn("could not light LED", zap.Stringer("pin", on), zap.Error(err))
	}
}

// AllOff darkens both LEDs.
func (d *Device) AllOff() error {
	if err := d.red.Out(gpio.Low); err != nil {
		return fmt.Errorf("probe: could not darken red LED: %w", err)
	}
	if err := d.ir.Out(gpio.Low); err != nil {
		return fmt.Errorf("probe: could not darken IR LED: %w", err)
	}
	return nil
}

// Sample performs one ADC conversion scaled to the 16-bit intensity range.
// A failed conversion is reported as pulseox.InvalidSample, never as an
// error across this boundary.
func (d *Device) Sample() uint16 {
	s, err := d.photo.Read()
	if err != nil {
		d.log.Debug("ADC read failed", zap.Error(err))
		return pulseox.InvalidSample
	}

	min, max := d.photo.Range()
	if max.Raw <= min.Raw {
		return pulseox.InvalidSample
	}

	v := (int64(s.Raw) - int64(min.Raw)) * math.MaxUint16 / (int64(max.Raw) - int64(min.Raw))
	if v < 0 {
		v = 0
	}
	// Keep one count below the invalid sentinel.
	if v >= math.MaxUint16 {
		v = math.MaxUint16 - 1
	}

	return uint16(v)
}

// Close darkens the LEDs and releases the pins and the bus.
func (d *Device) Close() {
	if err := d.AllOff(); err != nil {
		d.log.Warn("could not darken LEDs", zap.Error(err))
	}
	if err := d.photo.Halt(); err != nil {
		d.log.Warn("could not halt ADC", zap.Error(err))
	}
	if err := d.bus.Close(); err != nil {
		d.log.Warn("could not close bus", zap.Error(err))
	}
}
