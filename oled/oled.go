// Package oled implements the pulseox Display interface on an SSD1306
// 128x64 monochrome panel over I²C. Frames are composed into a 1-bit
// in-memory image and pushed to the panel on Flip.
package oled

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/devices/ssd1306"
	"periph.io/x/periph/devices/ssd1306/image1bit"
	"periph.io/x/periph/host"
)

// Display is an SSD1306 frame sink. It is not safe for concurrent use; the
// render path is its only caller.
type Display struct {
	dev *ssd1306.Dev
	bus i2c.BusCloser
	img *image1bit.VerticalLSB
	log *zap.Logger

	busName string
}

// New opens the panel and returns a cleared display.
func New(options ...Option) (*Display, error) {
	d := &Display{
		log: zap.NewNop(),
	}
	for _, opt := range options {
		opt(d)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("oled: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(d.busName)
	if err != nil {
		return nil, fmt.Errorf("oled: could not open I2C bus: %w", err)
	}
	d.bus = bus

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("oled: could not initialize panel: %w", err)
	}
	d.dev = dev
	d.img = image1bit.NewVerticalLSB(dev.Bounds())

	d.log.Info("panel ready", zap.Stringer("bounds", dev.Bounds().Size()))

	return d, nil
}

// Clear blanks the working frame. The panel itself changes on Flip.
func (d *Display) Clear() {
	d.img = image1bit.NewVerticalLSB(d.dev.Bounds())
}

// DrawText draws s with its top-left corner at (x, y) in a fixed 7x13 font.
func (d *Display) DrawText(x, y int, s string) {
	drawer := font.Drawer{
		Dst:  d.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent),
	}
	drawer.DrawString(s)
}

// DrawPixel lights one pixel in the working frame.
func (d *Display) DrawPixel(x, y int) {
	d.img.SetBit(x, y, image1bit.On)
}

// DrawLine lights the pixels between two points.
func (d *Display) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		d.img.SetBit(x0, y0, image1bit.On)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Flip commits the working frame to the panel.
func (d *Display) Flip() {
	if err := d.dev.Draw(d.dev.Bounds(), d.img, image.Point{}); err != nil {
		d.log.Warn("could not push frame", zap.Error(err))
	}
}

// Halt blanks the panel and releases the bus.
func (d *Display) Halt() {
	if err := d.dev.Halt(); err != nil {
		d.log.Warn("could not halt panel", zap.Error(err))
	}
	if err := d.bus.Close(); err != nil {
		d.log.Warn("could not close bus", zap.Error(err))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
