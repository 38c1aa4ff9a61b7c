package pianoroll

import (
	"errors"
	"image/color"

	"video2midi/keyboard"
)

// Layout fixes the geometry and palette of rendered frames. Every edge is
// on a whole pixel so rendered colors are exact.
type Layout struct {
	// FirstNote is the pitch class of the leftmost key (9 = A).
	FirstNote int
	Keys      int

	// KeyW is the distance between white key centers.
	KeyW int
	KeyH int
	// BlackKeyH is how far black keys reach down from the top of the keyboard.
	BlackKeyH int
	// RollH is the height of the falling-note area above the keyboard.
	RollH int
	// LabelH is a strip below the keyboard for octave labels. Zero hides it.
	LabelH int

	Background color.RGBA
	WhiteKey   color.RGBA
	BlackKey   color.RGBA
	Left       color.RGBA
	Right      color.RGBA
}

var (
	colorBackground = color.RGBA{30, 30, 30, 255}
	colorWhiteKey   = color.RGBA{245, 245, 245, 255}
	colorBlackKey   = color.RGBA{12, 12, 12, 255}
	colorBlue       = color.RGBA{60, 120, 230, 255}
	colorGreen      = color.RGBA{70, 200, 90, 255}
)

func DefaultLayout() Layout {
	return Layout{
		FirstNote:  9,
		Keys:       keyboard.MaxKeys,
		KeyW:       20,
		KeyH:       100,
		BlackKeyH:  60,
		RollH:      80,
		LabelH:     20,
		Background: colorBackground,
		WhiteKey:   colorWhiteKey,
		BlackKey:   colorBlackKey,
		Left:       colorBlue,
		Right:      colorGreen,
	}
}

func (l Layout) validate() error {
	if l.Keys <= 0 || l.Keys > keyboard.MaxKeys {
		return errors.New("layout needs between 1 and 88 keys")
	}
	if !keyboard.IsWhiteNote(l.FirstNote) {
		return errors.New("layout must start on a white key")
	}
	if l.KeyW < 10 || l.KeyW%2 != 0 {
		return errors.New("white key width must be even and at least 10")
	}
	if l.BlackKeyH < 2 || l.KeyH-l.BlackKeyH < 2 {
		return errors.New("black keys must leave room above and below the probe rows")
	}
	if l.RollH < 3 {
		return errors.New("roll must be at least 3 pixels high")
	}
	return nil
}

func (l Layout) whiteKeys() int {
	var n = 0
	for k := 0; k < l.Keys; k++ {
		if keyboard.IsWhiteNote(l.FirstNote + k) {
			n++
		}
	}
	return n
}

func (l Layout) Width() int  { return l.whiteKeys() * l.KeyW }
func (l Layout) Height() int { return l.RollH + l.KeyH + l.LabelH }

// ReadHeight is a roll row just above the keyboard that note bars cross.
func (l Layout) ReadHeight() int { return l.RollH - 2 }

// BlackProbe and WhiteProbe are keyboard rows that cross the black keys and
// lie below them.
func (l Layout) BlackProbe() int { return l.RollH + l.BlackKeyH/2 }
func (l Layout) WhiteProbe() int { return l.RollH + (l.BlackKeyH+l.KeyH)/2 }

// whiteIndex is how many white keys lie left of key k.
func (l Layout) whiteIndex(k int) int {
	var n = 0
	for i := 0; i < k; i++ {
		if keyboard.IsWhiteNote(l.FirstNote + i) {
			n++
		}
	}
	return n
}

// KeyCenter is the column of key k's center: the middle of a white key, or
// the boundary a black key sits on.
func (l Layout) KeyCenter(k int) float64 {
	var x = l.whiteIndex(k) * l.KeyW
	if keyboard.IsWhiteNote(l.FirstNote + k) {
		return float64(x + l.KeyW/2)
	}
	return float64(x)
}

// noteSpan is the column range of key k's falling bar.
func (l Layout) noteSpan(k int) (int, int) {
	var c = int(l.KeyCenter(k))
	if keyboard.IsWhiteNote(l.FirstNote + k) {
		return c - l.KeyW/4, c + l.KeyW/4
	}
	var half = l.KeyW * 3 / 20
	if half < 2 {
		half = 2
	}
	return c - half, c + half
}
