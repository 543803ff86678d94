// Package pulseox implements the measurement pipeline of a dual-wavelength
// pulse oximeter: alternating red/IR LED strobing, adaptive threshold
// tracking, beat detection, SpO2 and heart rate estimation, and frame
// composition for a small monochrome display.
//
// The package is hardware independent. The probe and oled subpackages
// provide periph.io backed implementations of the LightSource, PhotoSampler
// and Display interfaces for a Raspberry Pi with discrete LEDs, a
// phototransistor on an ADS1115 and an SSD1306 panel.
package pulseox

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidSample is thrown when the photo sampler reports the invalid
	// sample sentinel for a channel (e.g. a failed ADC conversion). The
	// acquisition cycle substitutes the last valid reading for that channel.
	ErrInvalidSample = errors.New("invalid sample")
	// ErrNotDetected is thrown when there is no usable pulsatile signal on
	// the sensor (e.g. no finger is placed on it when estimating).
	ErrNotDetected = errors.New("nothing detected on the sensor")
	// ErrSaturated is thrown when the baseline light level sits at the top
	// of the ADC range, which drowns the pulsatile component (e.g. ambient
	// light flooding the phototransistor).
	ErrSaturated = errors.New("signal saturated")
	// ErrBeatTimeout is thrown when no beat has been detected within the
	// configured timeout, so the last heart rate is considered stale.
	ErrBeatTimeout = errors.New("no beat within timeout")
	// ErrWarmingUp is thrown while the adaptive threshold or the estimation
	// window has not yet seen enough samples to produce a value.
	ErrWarmingUp = errors.New("warm-up not complete")
)

// Channel identifies one of the two LED wavelengths.
type Channel int

const (
	// ChannelRed is the 660 nm red LED.
	ChannelRed Channel = iota
	// ChannelIR is the 940 nm infrared LED.
	ChannelIR

	numChannels = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelIR:
		return "ir"
	}
	return "unknown"
}

// InvalidSample is the sentinel a PhotoSampler returns when a hardware read
// fails. It is never a valid intensity.
const InvalidSample uint16 = math.MaxUint16

// Sample is a single raw intensity reading, immutable once captured.
type Sample struct {
	Value   uint16
	Channel Channel
	At      time.Time
}

// SamplePair holds one red and one IR sample captured back to back within
// the same acquisition tick.
type SamplePair struct {
	Red Sample
	IR  Sample
}

// LightSource selects which LED wavelength illuminates the sensor.
type LightSource interface {
	SetChannel(ch Channel)
}

// PhotoSampler returns one raw intensity reading. A failed hardware read is
// reported as InvalidSample, never as an error across this boundary.
type PhotoSampler interface {
	Sample() uint16
}

// Display is the minimal frame sink the composer draws on. Flip commits the
// frame; nothing is visible before it.
type Display interface {
	Clear()
	DrawText(x, y int, s string)
	DrawPixel(x, y int)
	DrawLine(x0, y0, x1, y1 int)
	Flip()
}

// Oximeter owns the full per-tick pipeline. All state is mutated by the
// single Run loop only, so no locking is needed anywhere below it.
type Oximeter struct {
	cfg Config
	log *zap.Logger

	acq        *Acquirer
	thresholds *ThresholdTracker
	detector   *BeatDetector
	spo2       *SpO2Estimator
	bpm        *BPMEstimator
	comp       *Composer
	redTrend   *TrendBuffer
	irTrend    *TrendBuffer
}

// New wires the pipeline around the given hardware collaborators.
func New(light LightSource, sampler PhotoSampler, disp Display, options ...Option) (*Oximeter, error) {
	o := &Oximeter{
		cfg: DefaultConfig(),
		log: zap.NewNop(),
	}
	o.Options(options...)

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	o.acq = NewAcquirer(light, sampler, o.cfg.Settle.Std())
	o.thresholds = NewThresholdTracker(o.cfg.WarmupWindow, o.cfg.ThresholdFraction, o.cfg.NoiseFloor)
	o.detector = NewBeatDetector(o.cfg.Refractory.Std())
	o.spo2 = NewSpO2Estimator(o.cfg.SpO2Window, o.cfg.CalibrationA, o.cfg.CalibrationB)
	o.bpm = NewBPMEstimator(o.cfg.BeatTimeout.Std())
	o.comp = NewComposer(disp, o.cfg.RefreshEvery.Std())
	o.redTrend = NewTrendBuffer(graphWidth)
	o.irTrend = NewTrendBuffer(graphWidth)

	return o, nil
}

// Run drives the acquisition loop until the context is cancelled. Each tick
// runs strictly sequentially: acquire, track thresholds, detect beats,
// estimate, render. No tick failure is fatal; the loop always completes the
// tick and renders whatever is currently known.
func (o *Oximeter) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.SamplePeriod.Std())
	defer ticker.Stop()

	o.log.Info("pipeline running",
		zap.Duration("sample_period", o.cfg.SamplePeriod.Std()),
		zap.Duration("refresh_every", o.cfg.RefreshEvery.Std()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			o.tick(now)
		}
	}
}

func (o *Oximeter) tick(now time.Time) {
	pair, err := o.acq.Tick()
	if err != nil {
		o.log.Warn("acquisition degraded", zap.Error(err))
	}

	redState := o.thresholds.Update(ChannelRed, pair.Red.Value)
	irState := o.thresholds.Update(ChannelIR, pair.IR.Value)

	if ev, ok := o.detector.Process(pair.IR, irState); ok {
		o.bpm.Beat(ev)
		o.log.Debug("beat", zap.Time("at", ev.At))
	}

	o.spo2.Push(pair)
	spo2, err := o.spo2.Estimate()
	if err != nil {
		o.log.Debug("spo2 unavailable", zap.Error(err))
	}
	bpm, err := o.bpm.Estimate(now)
	if err != nil {
		o.log.Debug("bpm unavailable", zap.Error(err))
	}

	o.redTrend.Push(Normalize(pair.Red.Value, redState.Min, redState.Max, graphHeight))
	o.irTrend.Push(Normalize(pair.IR.Value, irState.Min, irState.Max, graphHeight))

	o.comp.Render(now, spo2, bpm, o.redTrend, o.irTrend)
}
