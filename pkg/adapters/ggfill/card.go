// Package ggfill renders a test card with the gg library and converts it to
// the frame's planar format.
package ggfill

import (
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/user/planarenc/pkg/fill"
	"github.com/user/planarenc/pkg/media"
)

// Bars are the 75% colour bars across the top two thirds of the card.
var Bars = [7][3]int{
	{191, 191, 191}, // white
	{191, 191, 0},   // yellow
	{0, 191, 191},   // cyan
	{0, 191, 0},     // green
	{191, 0, 191},   // magenta
	{191, 0, 0},     // red
	{0, 0, 191},     // blue
}

// BoxStep is how far the marker box moves per tick, in pixels.
const BoxStep = 4

// TestCard returns a fill function drawing colour bars, a moving marker box
// and a label with the title and tick number.
func TestCard(title string) fill.Func {
	return func(buf *media.ImageBuffer, tick int) {
		fill.FromImage(buf, Render(buf.Width, buf.Height, title, tick).Image())
	}
}

// Render draws the card for tick at the given size.
func Render(width, height int, title string, tick int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetRGB255(16, 16, 16)
	dc.Clear()

	barsHeight := float64(height) * 2 / 3
	for i, c := range Bars {
		x0 := float64(i * width / len(Bars))
		x1 := float64((i + 1) * width / len(Bars))
		dc.DrawRectangle(x0, 0, x1-x0, barsHeight)
		dc.SetRGB255(c[0], c[1], c[2])
		dc.Fill()
	}

	box := height / 6
	if box < 2 {
		box = 2
	}
	span := width - box
	if span < 1 {
		span = 1
	}
	x := (tick * BoxStep) % span
	dc.DrawRectangle(float64(x), barsHeight+float64(height/3-box)/2, float64(box), float64(box))
	dc.SetRGB255(235, 235, 235)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB255(255, 255, 255)
	dc.DrawString(fmt.Sprintf("%s #%d", title, tick), 4, float64(height)-4)

	return dc
}
