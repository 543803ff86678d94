package pulseox

import (
	"fmt"
	"time"
)

// Acquirer runs one strobe-settle-sample phase per channel and pairs the two
// readings. The two phases plus processing must fit within the sample
// period; with the default 5 ms settle that leaves ample margin at 20 Hz.
type Acquirer struct {
	light   LightSource
	sampler PhotoSampler
	settle  time.Duration

	last [numChannels]uint16

	// injectable for deterministic tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewAcquirer returns an acquirer strobing the given light source and
// reading the sampler after each settle interval.
func NewAcquirer(light LightSource, sampler PhotoSampler, settle time.Duration) *Acquirer {
	return &Acquirer{
		light:   light,
		sampler: sampler,
		settle:  settle,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Tick captures one red and one IR sample in immediate succession. A failed
// read is reported as ErrInvalidSample and the channel's last valid value is
// carried in the pair, so downstream estimators never see the sentinel.
func (a *Acquirer) Tick() (SamplePair, error) {
	red, errRed := a.capture(ChannelRed)
	ir, errIR := a.capture(ChannelIR)

	pair := SamplePair{Red: red, IR: ir}
	if errRed != nil {
		return pair, errRed
	}
	return pair, errIR
}

func (a *Acquirer) capture(ch Channel) (Sample, error) {
	a.light.SetChannel(ch)
	a.sleep(a.settle)

	v := a.sampler.Sample()
	s := Sample{Channel: ch, At: a.now()}
	if v == InvalidSample {
		s.Value = a.last[ch]
		return s, fmt.Errorf("pulseox: %s channel: %w", ch, ErrInvalidSample)
	}

	s.Value = v
	a.last[ch] = v
	return s, nil
}
