// Package waveform generates synthetic photoplethysmogram-like signals for
// exercising the pipeline without hardware. The shapes are deliberately
// simple: a baseline plus a raised sine pulse, optionally with deterministic
// noise.
package waveform

import (
	"math"
	"time"
)

// Pulse produces one pulsatile cycle per period when sampled at fs Hz.
type Pulse struct {
	fs        float64
	period    float64
	baseline  float64
	amplitude float64
	noise     float64

	phase float64
}

// NewPulse returns a generator with the given sampling rate, cycle period,
// baseline level and peak-to-trough amplitude in ADC counts. noise adds a
// deterministic pseudo-random ripple of the given amplitude.
func NewPulse(fs float64, period time.Duration, baseline, amplitude uint16, noise float64) *Pulse {
	return &Pulse{
		fs:        fs,
		period:    period.Seconds(),
		baseline:  float64(baseline),
		amplitude: float64(amplitude),
		noise:     noise,
	}
}

// Next returns the next sample and advances time by one sampling interval.
// The signal rises through the cycle midpoint exactly once per period.
func (p *Pulse) Next() uint16 {
	p.phase += 1 / (p.fs * p.period)
	if p.phase >= 1 {
		p.phase -= 1
	}

	v := p.baseline + p.amplitude*(0.5+0.5*math.Sin(2*math.Pi*p.phase))
	if p.noise > 0 {
		v += p.noise * (2*fract(math.Sin(12345.678*p.phase)*9876.543) - 1)
	}

	if v < 0 {
		return 0
	}
	if v > math.MaxUint16-1 {
		return math.MaxUint16 - 1
	}
	return uint16(v)
}

// Flat produces a constant signal, modeling a sensor with no finger on it.
type Flat struct {
	Level uint16
}

// Next returns the constant level.
func (f *Flat) Next() uint16 {
	return f.Level
}

func fract(x float64) float64 { return x - math.Floor(x) }
