package keyboard

import (
	"fmt"
	"image"
)

type GeometryOptions struct {
	// FirstNote is the letter of the leftmost key, which must be white. It
	// is taken as the lowest key of that letter on a full keyboard, so "A"
	// is key 0 (A0) and "C" is key 3 (C1).
	FirstNote string
	// FirstWhiteColumn and TenthWhiteColumn are the centers of the first
	// and tenth white keys; white keys are evenly spaced between them.
	FirstWhiteColumn float64
	TenthWhiteColumn float64
	// Keys caps the number of keys laid out. Zero means a full keyboard.
	Keys int
}

// GeometryCalibrator lays keys out from two measured white key centers and
// the diatonic pattern instead of reading brightness.
type GeometryCalibrator struct {
	opts GeometryOptions
}

func NewGeometryCalibrator(opts GeometryOptions) *GeometryCalibrator {
	return &GeometryCalibrator{opts: opts}
}

// Calibrate uses ref only for its width: keys whose center falls outside
// the frame are not laid out. ref may be nil.
func (c *GeometryCalibrator) Calibrate(ref image.Image) (*KeyMap, error) {
	firstPC, err := PitchClass(c.opts.FirstNote)
	if err != nil {
		return nil, err
	}
	if !IsWhiteNote(firstPC) {
		return nil, fmt.Errorf("%w: first note %q is a black key", ErrBadGeometry, c.opts.FirstNote)
	}

	var keyW = (c.opts.TenthWhiteColumn - c.opts.FirstWhiteColumn) / 9
	if keyW <= 0 {
		return nil, fmt.Errorf("%w: tenth white key (%.1f) must be right of the first (%.1f)",
			ErrBadGeometry, c.opts.TenthWhiteColumn, c.opts.FirstWhiteColumn)
	}

	var first = firstKeyOf(firstPC)
	var last = MaxKeys
	if c.opts.Keys > 0 && first+c.opts.Keys < last {
		last = first + c.opts.Keys
	}

	var minX, maxX = -1e18, 1e18
	if ref != nil {
		minX = float64(ref.Bounds().Min.X)
		maxX = float64(ref.Bounds().Max.X)
	}

	var entries = []Entry{}
	var whiteKeys = 0
	for key := first; key < last; key++ {
		var col float64
		if IsWhiteNote(lowestPitchClass + key) {
			col = c.opts.FirstWhiteColumn + float64(whiteKeys)*keyW
			whiteKeys++
		} else {
			// black keys sit on the boundary between two white keys
			col = c.opts.FirstWhiteColumn + (float64(whiteKeys)-0.5)*keyW
		}

		if col >= maxX {
			break
		}
		if col < minX {
			continue
		}
		entries = append(entries, Entry{Column: col, Key: key})
	}

	return NewKeyMap(entries)
}

// firstKeyOf is the index of the lowest key with pitch class pc.
func firstKeyOf(pc int) int {
	return ((pc-lowestPitchClass)%12 + 12) % 12
}
