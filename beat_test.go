package pulseox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func irSample(v uint16, at time.Time) Sample {
	return Sample{Value: v, Channel: ChannelIR, At: at}
}

func TestBeatDetectorIdleWithoutThreshold(t *testing.T) {
	d := NewBeatDetector(300 * time.Millisecond)
	at := time.Unix(0, 0)

	for i := 0; i < 100; i++ {
		v := uint16(100)
		if i%2 == 0 {
			v = 0
		}
		_, ok := d.Process(irSample(v, at), ThresholdState{})
		assert.False(t, ok, "detector must emit nothing while warming up")
		at = at.Add(50 * time.Millisecond)
	}
}

func TestBeatDetectorRisingEdgeOnly(t *testing.T) {
	d := NewBeatDetector(300 * time.Millisecond)
	st := ThresholdState{Min: 0, Max: 100, Threshold: 50, Ready: true}
	at := time.Unix(0, 0)

	_, ok := d.Process(irSample(60, at), st)
	require.True(t, ok, "first upward crossing must emit")

	// Staying above the threshold is not a new beat.
	for i := 0; i < 10; i++ {
		at = at.Add(50 * time.Millisecond)
		_, ok := d.Process(irSample(70, at), st)
		assert.False(t, ok)
	}

	// Falling below re-arms without emitting.
	at = at.Add(50 * time.Millisecond)
	_, ok = d.Process(irSample(40, at), st)
	assert.False(t, ok)

	at = at.Add(time.Second)
	ev, ok := d.Process(irSample(60, at), st)
	require.True(t, ok)
	assert.Equal(t, at, ev.At)
}

func TestBeatDetectorRefractorySuppression(t *testing.T) {
	const refractory = 300 * time.Millisecond
	d := NewBeatDetector(refractory)
	st := ThresholdState{Min: 0, Max: 100, Threshold: 50, Ready: true}

	// Jittery signal crossing the threshold every other sample: without the
	// refractory window this would be one beat every 100 ms.
	var events []BeatEvent
	at := time.Unix(0, 0)
	for i := 0; i < 120; i++ {
		v := uint16(40)
		if i%2 == 0 {
			v = 60
		}
		if ev, ok := d.Process(irSample(v, at), st); ok {
			events = append(events, ev)
		}
		at = at.Add(50 * time.Millisecond)
	}

	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		gap := events[i].At.Sub(events[i-1].At)
		assert.GreaterOrEqual(t, gap, refractory,
			"beats %d and %d are closer than the refractory interval", i-1, i)
	}
}

func TestBeatDetectorTimestampsStrictlyIncrease(t *testing.T) {
	d := NewBeatDetector(300 * time.Millisecond)
	st := ThresholdState{Min: 0, Max: 100, Threshold: 50, Ready: true}

	var last time.Time
	at := time.Unix(0, 0)
	for i := 0; i < 200; i++ {
		v := uint16(30)
		if i%8 < 4 {
			v = 80
		}
		if ev, ok := d.Process(irSample(v, at), st); ok {
			if !last.IsZero() {
				assert.True(t, ev.At.After(last))
			}
			last = ev.At
		}
		at = at.Add(50 * time.Millisecond)
	}
	assert.False(t, last.IsZero())
}
