package pulseox

import "time"

// BeatEvent marks a rising-edge crossing of the IR signal above the
// adaptive threshold. Events form a strictly increasing sequence.
type BeatEvent struct {
	At time.Time
}

type beatState int

const (
	beatBelow beatState = iota
	beatAbove
)

// BeatDetector is a two-state machine over IR samples relative to the
// current threshold. A BELOW to ABOVE transition emits a beat; falling back
// below re-arms the detector. Crossings inside the refractory window are
// swallowed without resetting the refractory clock, which rejects
// double-counting from signal jitter.
type BeatDetector struct {
	refractory time.Duration

	state    beatState
	lastBeat time.Time
}

// NewBeatDetector returns a detector in the BELOW state.
func NewBeatDetector(refractory time.Duration) *BeatDetector {
	return &BeatDetector{
		refractory: refractory,
	}
}

// Process feeds one IR sample. It reports a BeatEvent only on an upward
// threshold crossing outside the refractory window. While the threshold is
// warming up the detector stays idle and emits nothing.
func (d *BeatDetector) Process(s Sample, st ThresholdState) (BeatEvent, bool) {
	if !st.Ready {
		return BeatEvent{}, false
	}

	switch d.state {
	case beatAbove:
		if s.Value < st.Threshold {
			d.state = beatBelow
		}

	case beatBelow:
		if s.Value < st.Threshold {
			break
		}
		d.state = beatAbove
		if !d.lastBeat.IsZero() && s.At.Sub(d.lastBeat) < d.refractory {
			break
		}
		d.lastBeat = s.At
		return BeatEvent{At: s.At}, true
	}

	return BeatEvent{}, false
}
