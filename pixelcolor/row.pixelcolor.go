package pixelcolor

import (
	"image"
)

// ClassifyRow classifies every pixel of row y in img, left to right.
// Consecutive identical pixels reuse the previous result.
func (c *Classifier) ClassifyRow(img image.Image, y int) []Hand {
	var bounds = img.Bounds()
	var out = make([]Hand, bounds.Dx())

	var haveLast bool
	var lastR, lastG, lastB uint8
	var lastHand Hand

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		r, g, b := PixelRGB(img, x, y)
		if haveLast && r == lastR && g == lastG && b == lastB {
			out[x-bounds.Min.X] = lastHand
			continue
		}
		lastHand = c.ClassifyRGB(r, g, b)
		lastR, lastG, lastB = r, g, b
		haveLast = true
		out[x-bounds.Min.X] = lastHand
	}

	return out
}

// PixelRGB reads one pixel as 8-bit RGB, with fast paths for the image
// types the frame decoders and renderer produce.
func PixelRGB(img image.Image, x, y int) (uint8, uint8, uint8) {
	switch m := img.(type) {
	case *image.RGBA:
		var i = m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	case *image.NRGBA:
		var i = m.PixOffset(x, y)
		return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
	}
	return toRGB8(img.At(x, y))
}
