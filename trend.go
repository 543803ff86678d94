package pulseox

// TrendBuffer is a fixed ring of normalized signal values kept only for
// rendering the scrolling graphs. The oldest value is overwritten by the
// newest.
type TrendBuffer struct {
	buffer []int
	idx    int
}

// NewTrendBuffer returns a buffer holding size values, initially flat.
func NewTrendBuffer(size int) *TrendBuffer {
	return &TrendBuffer{
		buffer: make([]int, size),
	}
}

// Push appends a value, evicting the oldest.
func (t *TrendBuffer) Push(v int) {
	t.buffer[t.idx] = v
	t.idx++
	t.idx %= len(t.buffer)
}

// Len returns the buffer capacity.
func (t *TrendBuffer) Len() int {
	return len(t.buffer)
}

// At returns the i-th value from oldest (0) to newest (Len()-1).
func (t *TrendBuffer) At(i int) int {
	return t.buffer[(t.idx+i)%len(t.buffer)]
}

// Normalize maps a raw intensity into [0,scale] by linear rescale over the
// current threshold bounds, clamped at both ends. A degenerate band
// (min == max) maps to 0.
func Normalize(v, min, max uint16, scale int) int {
	if max <= min {
		return 0
	}
	if v <= min {
		return 0
	}
	if v >= max {
		return scale
	}
	return int(float64(v-min) / float64(max-min) * float64(scale))
}
