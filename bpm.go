package pulseox

import "time"

// Heart rate is expected to be between 10 to 250 beats per minute. Beat
// intervals outside that range are considered invalid and do not enter the
// smoothing average.
const (
	minBeatInterval = 238 * time.Millisecond
	maxBeatInterval = 6 * time.Second
)

// intervalAverage keeps an estimated moving average over the last 4 beat
// intervals, enough to take the jitter out of the readout without lagging a
// real rate change by more than a couple of beats.
type intervalAverage struct {
	mean float64
}

func (m *intervalAverage) add(ms float64) {
	m.mean += (ms - m.mean) / 4
}

func (m *intervalAverage) reset() {
	m.mean = 0
}

// BPMEstimate is a smoothed heart rate. Known is false until two beats have
// been accepted and decays back to false when no beat arrives within the
// timeout, which models finger removal.
type BPMEstimate struct {
	BPM   float64
	Known bool
}

// BPMEstimator derives the heart rate from the intervals between detected
// beats, smoothed over the last few intervals to reduce jitter.
type BPMEstimator struct {
	timeout time.Duration

	hr       intervalAverage
	lastBeat time.Time
	accepted int
}

// NewBPMEstimator returns an estimator that reports unknown after the given
// time without a beat.
func NewBPMEstimator(timeout time.Duration) *BPMEstimator {
	return &BPMEstimator{
		timeout: timeout,
	}
}

// Beat folds a detected beat into the estimate. A beat arriving after the
// timeout discards the stale history and starts over.
func (e *BPMEstimator) Beat(ev BeatEvent) {
	if e.lastBeat.IsZero() {
		e.lastBeat = ev.At
		return
	}

	span := ev.At.Sub(e.lastBeat)
	e.lastBeat = ev.At

	if span > e.timeout {
		e.hr.reset()
		e.accepted = 0
		return
	}
	if span < minBeatInterval || span > maxBeatInterval {
		return
	}

	ms := float64(span.Milliseconds())
	// if first interval, pre-fill the average.
	if e.hr.mean == 0 {
		e.hr.mean = ms
	}
	e.hr.add(ms)
	e.accepted++
}

// Estimate returns the current heart rate. It is unknown until at least two
// beats (one accepted interval) have been observed, and reverts to unknown
// with ErrBeatTimeout once the last beat is older than the timeout.
func (e *BPMEstimator) Estimate(now time.Time) (BPMEstimate, error) {
	if e.accepted < 1 || e.hr.mean == 0 {
		return BPMEstimate{}, ErrNotDetected
	}
	if now.Sub(e.lastBeat) > e.timeout {
		return BPMEstimate{}, ErrBeatTimeout
	}

	return BPMEstimate{
		BPM:   60000 / e.hr.mean,
		Known: true,
	}, nil
}
