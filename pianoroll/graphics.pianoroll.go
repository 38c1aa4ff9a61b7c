package pianoroll

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"video2midi/keyboard"
)

func fillRect(dc *gg.Context, x0, y0, x1, y1 int, c color.Color) {
	dc.DrawRectangle(float64(x0), float64(y0), float64(x1-x0), float64(y1-y0))
	dc.SetColor(c)
	dc.Fill()
}

func prepareScreen(dc *gg.Context, l Layout) {
	fillRect(dc, 0, 0, l.Width(), l.Height(), l.Background)
}

// drawKeyboard draws white keys with a two pixel seam between them, then
// the black keys over the seams. Pressed keys take the color of the hand.
func drawKeyboard(dc *gg.Context, l Layout, pressed map[int]color.RGBA) {
	var top = l.RollH

	var x = 0
	for k := 0; k < l.Keys; k++ {
		if !keyboard.IsWhiteNote(l.FirstNote + k) {
			continue
		}
		var c = l.WhiteKey
		if p, ok := pressed[k]; ok {
			c = p
		}
		fillRect(dc, x+1, top, x+l.KeyW-1, top+l.KeyH, c)
		x += l.KeyW
	}

	for k := 0; k < l.Keys; k++ {
		if keyboard.IsWhiteNote(l.FirstNote + k) {
			continue
		}
		var c = l.BlackKey
		if p, ok := pressed[k]; ok {
			c = getDarkerShade(p)
		}
		var center = int(l.KeyCenter(k))
		fillRect(dc, center-l.KeyW/4, top, center+l.KeyW/4, top+l.BlackKeyH, c)
	}
}

func drawFallingNotes(dc *gg.Context, l Layout, notes map[int]color.RGBA) {
	for k := 0; k < l.Keys; k++ {
		c, ok := notes[k]
		if !ok {
			continue
		}
		x0, x1 := l.noteSpan(k)
		fillRect(dc, x0, 0, x1, l.RollH, c)
	}
}

func drawCNotesNotation(dc *gg.Context, l Layout, face font.Face) {
	if l.LabelH <= 0 || face == nil {
		return
	}

	dc.SetFontFace(face)
	dc.SetRGBA(1, 1, 1, 0.6)
	for k := 0; k < l.Keys; k++ {
		var pc = ((l.FirstNote+k)%12 + 12) % 12
		if pc != 0 {
			continue
		}
		var octave = (l.FirstNote + k) / 12
		var x = l.whiteIndex(k) * l.KeyW
		dc.DrawString(fmt.Sprintf("C%d", octave), float64(x+2), float64(l.Height()-l.LabelH/4))
	}
}

func getDarkerShade(c color.RGBA) color.RGBA {
	const d = 0.8
	return color.RGBA{uint8(float64(c.R) * d), uint8(float64(c.G) * d), uint8(float64(c.B) * d), c.A}
}
