package pixelcolor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	bg    = RGB{33, 33, 33}
	left  = RGB{85, 123, 222}
	right = RGB{255, 218, 225}
)

func TestClassifyReferenceColors(t *testing.T) {
	c := New(bg, left, right)

	assert := assert.New(t)
	assert.Equal(Background, c.ClassifyRGB(33, 33, 33))
	assert.Equal(LeftHand, c.ClassifyRGB(85, 123, 222))
	assert.Equal(RightHand, c.ClassifyRGB(255, 218, 225))
}

func TestClassifyNearestReference(t *testing.T) {
	c := New(bg, left, right)

	cases := []struct {
		name string
		px   color.Color
		want Hand
	}{
		{"dark grey", color.RGBA{40, 38, 41, 255}, Background},
		{"darker blue", color.RGBA{70, 110, 200, 255}, LeftHand},
		{"pale pink", color.NRGBA{250, 210, 220, 255}, RightHand},
		{"gray16 black", color.Gray16{Y: 0}, Background},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.px))
		})
	}
}

func TestClassifyTieGoesToBackground(t *testing.T) {
	// identical hand colors: every pixel is equally far from both hands
	same := New(bg, left, left)
	assert.Equal(t, Background, same.ClassifyRGB(85, 123, 222))

	// background identical to the left hand: exact match is still ambiguous
	bgIsLeft := New(left, left, right)
	assert.Equal(t, Background, bgIsLeft.ClassifyRGB(85, 123, 222))
	assert.Equal(t, RightHand, bgIsLeft.ClassifyRGB(255, 218, 225))
}

func TestClassifyRow(t *testing.T) {
	c := New(bg, left, right)
	img := image.NewRGBA(image.Rect(0, 0, 6, 1))
	row := []color.RGBA{
		{33, 33, 33, 255},
		{85, 123, 222, 255},
		{85, 123, 222, 255},
		{33, 33, 33, 255},
		{255, 218, 225, 255},
		{255, 218, 225, 255},
	}
	for x, px := range row {
		img.SetRGBA(x, 0, px)
	}

	assert.Equal(t, []Hand{Background, LeftHand, LeftHand, Background, RightHand, RightHand}, c.ClassifyRow(img, 0))
}

func TestHandString(t *testing.T) {
	assert.Equal(t, "left", LeftHand.String())
	assert.Equal(t, "right", RightHand.String())
	assert.Equal(t, "background", Background.String())
}
