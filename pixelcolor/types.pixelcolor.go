package pixelcolor

import colorful "github.com/lucasb-eyer/go-colorful"

type Hand uint8

const (
	Background Hand = iota
	LeftHand
	RightHand
)

func (h Hand) String() string {
	switch h {
	case LeftHand:
		return "left"
	case RightHand:
		return "right"
	default:
		return "background"
	}
}

// RGB is a reference color as supplied by calibration, 0-255 per channel.
type RGB [3]uint8

// Color keeps the supplied RGB value next to its Lab form. Only the Lab form
// is used for distances.
type Color struct {
	RGB RGB
	lab lab
}

type lab struct {
	L, A, B float64
}

func NewColor(c RGB) Color {
	return Color{RGB: c, lab: toLab(c[0], c[1], c[2])}
}

func toLab(r, g, b uint8) lab {
	var c = colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, a, bb := c.Lab()
	return lab{l, a, bb}
}

func (p lab) dist2(q lab) float64 {
	var dl = p.L - q.L
	var da = p.A - q.A
	var db = p.B - q.B
	return dl*dl + da*da + db*db
}
