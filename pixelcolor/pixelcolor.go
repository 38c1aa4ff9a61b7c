package pixelcolor

import (
	"image/color"
)

type Classifier struct {
	background Color
	left       Color
	right      Color
}

func New(background, left, right RGB) *Classifier {
	return &Classifier{
		background: NewColor(background),
		left:       NewColor(left),
		right:      NewColor(right),
	}
}

func (c *Classifier) Background() Color { return c.background }
func (c *Classifier) Left() Color       { return c.left }
func (c *Classifier) Right() Color      { return c.right }

// Classify assigns c to the reference with the strictly smallest Lab
// distance. Anything that is not strictly closer to one hand than to both
// other references is Background.
func (c *Classifier) Classify(px color.Color) Hand {
	r, g, b := toRGB8(px)
	return c.ClassifyRGB(r, g, b)
}

func (c *Classifier) ClassifyRGB(r, g, b uint8) Hand {
	return c.classifyLab(toLab(r, g, b))
}

func (c *Classifier) classifyLab(p lab) Hand {
	var dBg = p.dist2(c.background.lab)
	var dLeft = p.dist2(c.left.lab)
	var dRight = p.dist2(c.right.lab)

	if dLeft < dBg && dLeft < dRight {
		return LeftHand
	}
	if dRight < dBg && dRight < dLeft {
		return RightHand
	}
	return Background
}

func toRGB8(px color.Color) (uint8, uint8, uint8) {
	switch v := px.(type) {
	case color.RGBA:
		return v.R, v.G, v.B
	case color.NRGBA:
		return v.R, v.G, v.B
	}
	r, g, b, _ := px.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
