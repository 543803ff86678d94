package pulseox

// ThresholdState is the detection band for one channel. Min and Max are the
// extrema of the recent sample window; Threshold sits between them at the
// configured fraction. Ready is false until the warm-up window has elapsed,
// during which the threshold must not be used.
type ThresholdState struct {
	Min       uint16
	Max       uint16
	Threshold uint16
	Ready     bool
}

// ThresholdTracker maintains one adaptive detection band per channel from a
// bounded window of recent samples, so the detector follows varying finger
// pressure and contact quality.
type ThresholdTracker struct {
	k          float64
	noiseFloor uint16

	window [numChannels]*extrema
	state  [numChannels]ThresholdState
}

// NewThresholdTracker returns a tracker with a per-channel window of the
// given size. The threshold is re-derived on every update as
// min + k*(max-min). If the span falls below noiseFloor counts, the band
// freezes at its last valid value instead of collapsing.
func NewThresholdTracker(window int, k float64, noiseFloor uint16) *ThresholdTracker {
	t := &ThresholdTracker{
		k:          k,
		noiseFloor: noiseFloor,
	}
	for ch := range t.window {
		t.window[ch] = newExtrema(window)
	}
	return t
}

// Update folds one sample into the channel's window and returns the
// resulting state.
func (t *ThresholdTracker) Update(ch Channel, v uint16) ThresholdState {
	e := t.window[ch]
	e.add(v)

	if !e.warm() {
		return t.state[ch]
	}

	span := e.max - e.min
	if span < t.noiseFloor {
		// Degenerate band, hold the last valid threshold.
		return t.state[ch]
	}

	st := ThresholdState{
		Min:       e.min,
		Max:       e.max,
		Threshold: e.min + uint16(t.k*float64(span)),
		Ready:     true,
	}
	t.state[ch] = st
	return st
}

// State returns the current band for a channel without updating it.
func (t *ThresholdTracker) State(ch Channel) ThresholdState {
	return t.state[ch]
}

// extrema is a ring of recent samples with cached min/max. Evicting the
// current extremum triggers a rescan of the window.
type extrema struct {
	buffer []uint16
	idx    int
	filled int

	min uint16
	max uint16
}

func newExtrema(size int) *extrema {
	return &extrema{
		buffer: make([]uint16, size),
	}
}

func (e *extrema) add(v uint16) {
	e.idx++
	e.idx %= len(e.buffer)

	old := e.buffer[e.idx]
	e.buffer[e.idx] = v

	if e.filled < len(e.buffer) {
		e.filled++
		if e.filled == 1 {
			e.min = v
			e.max = v
			return
		}
		e.minmax(v)
		return
	}

	if old == e.max || old == e.min {
		e.min = v
		e.max = v
		for _, b := range e.buffer {
			e.minmax(b)
		}
	} else {
		e.minmax(v)
	}
}

func (e *extrema) minmax(v uint16) {
	if v > e.max {
		e.max = v
	}
	if v < e.min {
		e.min = v
	}
}

func (e *extrema) warm() bool {
	return e.filled == len(e.buffer)
}
