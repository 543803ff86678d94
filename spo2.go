package pulseox

const (
	// spo2MinWindow is the minimum number of pairs before a ratio is
	// meaningful.
	spo2MinWindow = 16
	// spo2Epsilon is the AC/DC level, in ADC counts, below which there is no
	// pulsatile signal to work with.
	spo2Epsilon = 1.0
	// spo2SatLevel is the baseline level at which the ADC is considered
	// railed by ambient light.
	spo2SatLevel = 64000.0
	// Saturations below spo2Floor are outside the survivable range and are
	// treated as sensor or contact error, not reported.
	spo2Floor   = 70.0
	spo2Ceiling = 100.0
)

// SpO2Estimate is a saturation percentage clamped to [70,100]. Valid is
// false whenever the window holds no usable pulsatile signal.
type SpO2Estimate struct {
	Percent float64
	Valid   bool
}

// SpO2Estimator derives the saturation from the ratio of the AC and DC
// components of both channels over a sliding window of sample pairs:
//
//	R = (ACred/DCred) / (ACir/DCir)
//	SpO2 = a - b*R
//
// where a and b are empirical calibration constants.
type SpO2Estimator struct {
	a float64
	b float64

	window []SamplePair
	idx    int
	filled int
}

// NewSpO2Estimator returns an estimator computing the ratio over the last
// size pairs with the calibration SpO2 = a - b*R.
func NewSpO2Estimator(size int, a, b float64) *SpO2Estimator {
	return &SpO2Estimator{
		a:      a,
		b:      b,
		window: make([]SamplePair, size),
	}
}

// Push adds a pair to the window, evicting the oldest.
func (e *SpO2Estimator) Push(p SamplePair) {
	e.window[e.idx] = p
	e.idx++
	e.idx %= len(e.window)
	if e.filled < len(e.window) {
		e.filled++
	}
}

// Estimate computes the current saturation over the window. The estimate is
// invalid while the window is short (ErrWarmingUp), when the baseline rails
// (ErrSaturated) and when the IR channel carries no pulsatile component or
// the ratio lands below the survivable floor (ErrNotDetected).
func (e *SpO2Estimator) Estimate() (SpO2Estimate, error) {
	if e.filled < spo2MinWindow {
		return SpO2Estimate{}, ErrWarmingUp
	}

	acRed, dcRed := e.acdc(ChannelRed)
	acIR, dcIR := e.acdc(ChannelIR)

	if dcIR >= spo2SatLevel || dcRed >= spo2SatLevel {
		return SpO2Estimate{}, ErrSaturated
	}
	if dcIR <= spo2Epsilon || acIR <= spo2Epsilon || dcRed <= spo2Epsilon {
		return SpO2Estimate{}, ErrNotDetected
	}

	r := (acRed / dcRed) / (acIR / dcIR)
	spo2 := e.a - e.b*r

	if spo2 < spo2Floor {
		return SpO2Estimate{}, ErrNotDetected
	}
	if spo2 > spo2Ceiling {
		spo2 = spo2Ceiling
	}

	return SpO2Estimate{Percent: spo2, Valid: true}, nil
}

func (e *SpO2Estimator) acdc(ch Channel) (ac, dc float64) {
	var min, max uint16
	var sum float64

	for i := 0; i < e.filled; i++ {
		s := e.window[i].Red
		if ch == ChannelIR {
			s = e.window[i].IR
		}
		if i == 0 {
			min = s.Value
			max = s.Value
		}
		if s.Value < min {
			min = s.Value
		}
		if s.Value > max {
			max = s.Value
		}
		sum += float64(s.Value)
	}

	return float64(max - min), sum / float64(e.filled)
}
