package pulseox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBPMEstimatorUnknownUntilTwoBeats(t *testing.T) {
	e := NewBPMEstimator(3 * time.Second)
	at := time.Unix(0, 0)

	est, err := e.Estimate(at)
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.False(t, est.Known)

	e.Beat(BeatEvent{At: at})
	est, err = e.Estimate(at)
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.False(t, est.Known)

	e.Beat(BeatEvent{At: at.Add(600 * time.Millisecond)})
	est, err = e.Estimate(at.Add(600 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, est.Known)
}

func TestBPMEstimatorSteadyRate(t *testing.T) {
	e := NewBPMEstimator(3 * time.Second)

	at := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		e.Beat(BeatEvent{At: at})
		at = at.Add(600 * time.Millisecond)
	}

	est, err := e.Estimate(at)
	require.NoError(t, err)
	require.True(t, est.Known)
	assert.InDelta(t, 100, est.BPM, 0.01)
}

func TestBPMEstimatorTimeoutDecays(t *testing.T) {
	const timeout = 3 * time.Second
	e := NewBPMEstimator(timeout)

	at := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		e.Beat(BeatEvent{At: at})
		at = at.Add(600 * time.Millisecond)
	}
	last := at.Add(-600 * time.Millisecond)

	est, err := e.Estimate(last.Add(timeout))
	require.NoError(t, err)
	assert.True(t, est.Known)

	est, err = e.Estimate(last.Add(timeout + time.Millisecond))
	assert.ErrorIs(t, err, ErrBeatTimeout)
	assert.False(t, est.Known, "a stale rate must decay to unknown regardless of history")
}

func TestBPMEstimatorRestartsAfterGap(t *testing.T) {
	e := NewBPMEstimator(3 * time.Second)

	at := time.Unix(0, 0)
	e.Beat(BeatEvent{At: at})
	e.Beat(BeatEvent{At: at.Add(600 * time.Millisecond)})

	// Finger removed, then placed back: the stale history is discarded and
	// a single new beat is not enough to report a rate again.
	back := at.Add(10 * time.Second)
	e.Beat(BeatEvent{At: back})
	est, err := e.Estimate(back)
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.False(t, est.Known)

	e.Beat(BeatEvent{At: back.Add(500 * time.Millisecond)})
	est, err = e.Estimate(back.Add(500 * time.Millisecond))
	require.NoError(t, err)
	assert.InDelta(t, 120, est.BPM, 0.01)
}

func TestBPMEstimatorRejectsImplausibleIntervals(t *testing.T) {
	e := NewBPMEstimator(3 * time.Second)

	// 100 ms intervals would be 600 bpm; none may enter the average.
	at := time.Unix(0, 0)
	for i := 0; i < 20; i++ {
		e.Beat(BeatEvent{At: at})
		at = at.Add(100 * time.Millisecond)
	}

	est, err := e.Estimate(at)
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.False(t, est.Known)
}

func TestBPMEstimatorSmoothsJitter(t *testing.T) {
	e := NewBPMEstimator(3 * time.Second)

	at := time.Unix(0, 0)
	spans := []time.Duration{600, 650, 550, 620, 580, 600, 610, 590}
	e.Beat(BeatEvent{At: at})
	for _, ms := range spans {
		at = at.Add(ms * time.Millisecond)
		e.Beat(BeatEvent{At: at})
	}

	est, err := e.Estimate(at)
	require.NoError(t, err)
	assert.InDelta(t, 100, est.BPM, 5)
}
