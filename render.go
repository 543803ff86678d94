package pulseox

import (
	"fmt"
	"time"
)

// Display layout for the 128x64 panel: two numeric lines on top, the red
// graph in the middle band and the IR graph at the bottom.
const (
	displayWidth  = 128
	displayHeight = 64

	graphLeft   = 20
	graphWidth  = displayWidth - graphLeft
	graphHeight = (displayHeight - 20) / 2
)

// Composer maps the current estimates and trend buffers to display
// primitives. Frames are throttled by a monotonic clock comparison so the
// render cadence stays decoupled from the acquisition cadence.
type Composer struct {
	disp         Display
	refreshEvery time.Duration
	lastFrame    time.Time
}

// NewComposer returns a composer committing at most one frame per
// refreshEvery.
func NewComposer(disp Display, refreshEvery time.Duration) *Composer {
	return &Composer{
		disp:         disp,
		refreshEvery: refreshEvery,
	}
}

// Render composes and commits a frame, unless one was committed less than
// the refresh interval ago, in which case it reports false and draws
// nothing.
func (c *Composer) Render(now time.Time, spo2 SpO2Estimate, bpm BPMEstimate, red, ir *TrendBuffer) bool {
	if !c.lastFrame.IsZero() && now.Sub(c.lastFrame) < c.refreshEvery {
		return false
	}
	c.lastFrame = now

	c.disp.Clear()

	pulse := "--"
	if bpm.Known {
		pulse = fmt.Sprintf("%.0f", bpm.BPM)
	}
	sat := "--"
	if spo2.Valid {
		sat = fmt.Sprintf("%.1f", spo2.Percent)
	}
	c.disp.DrawText(0, 0, "Pulse: "+pulse+" bpm")
	c.disp.DrawText(0, 10, "SpO2: "+sat+"%")

	c.disp.DrawText(0, graphHeight+8, "RD")
	for x := 0; x < red.Len(); x++ {
		c.disp.DrawPixel(x+graphLeft, graphHeight-red.At(x)+16)
	}

	c.disp.DrawText(0, displayHeight-8, "IR")
	for x := 0; x < ir.Len(); x++ {
		c.disp.DrawPixel(x+graphLeft, displayHeight-1-ir.At(x))
	}

	c.disp.Flip()
	return true
}
