package keyboard

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyW        = 20
	testBlackW      = 10
	testBlackBottom = 35
	testBlackProbe  = 20
	testWhiteProbe  = 50
)

// drawTestKeyboard draws white keys testKeyW apart with a two pixel dark
// line between them, and black keys centered on the boundaries.
func drawTestKeyboard(firstPC, keys int) *image.RGBA {
	var whites = 0
	for k := 0; k < keys; k++ {
		if IsWhiteNote(firstPC + k) {
			whites++
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, whites*testKeyW, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	var white = image.NewUniform(color.White)
	var black = image.NewUniform(color.RGBA{20, 20, 20, 255})

	var w = 0
	for k := 0; k < keys; k++ {
		if !IsWhiteNote(firstPC + k) {
			continue
		}
		draw.Draw(img, image.Rect(w*testKeyW+1, 0, w*testKeyW+testKeyW-1, 60), white, image.Point{}, draw.Src)
		w++
	}

	w = 0
	for k := 0; k < keys; k++ {
		if IsWhiteNote(firstPC + k) {
			w++
			continue
		}
		var boundary = w * testKeyW
		draw.Draw(img, image.Rect(boundary-testBlackW/2, 0, boundary+testBlackW/2, testBlackBottom), black, image.Point{}, draw.Src)
	}

	return img
}

func testThresholdOptions() ThresholdOptions {
	return ThresholdOptions{
		BlackKeyHeight: testBlackProbe,
		WhiteKeyHeight: testWhiteProbe,
		Threshold:      128,
		Gap:            4,
	}
}

func TestThresholdCalibratorFullKeyboard(t *testing.T) {
	ref := drawTestKeyboard(9, MaxKeys)

	km, err := NewThresholdCalibrator(testThresholdOptions()).Calibrate(ref)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(MaxKeys, km.Len())
	assert.Equal(87, km.LastKey())

	entries := km.Entries()
	for i, e := range entries {
		assert.Equal(i, e.Key)
	}
	assert.Equal(Entry{Column: 10, Key: 0}, entries[0])
	assert.Equal(Entry{Column: 20, Key: 1}, entries[1])
	assert.Equal(Entry{Column: 30, Key: 2}, entries[2])
	assert.Equal(Entry{Column: 50, Key: 3}, entries[3])
	assert.Equal(Entry{Column: 60, Key: 4}, entries[4])
	assert.Equal(Entry{Column: 1030, Key: 87}, entries[87])
}

func TestThresholdCalibratorIsDeterministic(t *testing.T) {
	ref := drawTestKeyboard(0, 25)
	cal := NewThresholdCalibrator(testThresholdOptions())

	first, err := cal.Calibrate(ref)
	require.NoError(t, err)
	second, err := cal.Calibrate(ref)
	require.NoError(t, err)

	assert.Equal(t, first.Entries(), second.Entries())
	assert.Equal(t, 24, first.LastKey())
}

func TestThresholdCalibratorSuppressesSpecks(t *testing.T) {
	ref := drawTestKeyboard(9, MaxKeys)
	ref.Set(3, testWhiteProbe, color.Black)

	km, err := NewThresholdCalibrator(testThresholdOptions()).Calibrate(ref)
	require.NoError(t, err)

	entries := km.Entries()
	assert.Equal(t, MaxKeys, km.Len())
	assert.Equal(t, Entry{Column: 11.5, Key: 0}, entries[0])
}

func TestThresholdCalibratorMatchesGeometry(t *testing.T) {
	ref := drawTestKeyboard(9, MaxKeys)

	byThreshold, err := NewThresholdCalibrator(testThresholdOptions()).Calibrate(ref)
	require.NoError(t, err)

	byGeometry, err := NewGeometryCalibrator(GeometryOptions{
		FirstNote:        "A",
		FirstWhiteColumn: 10,
		TenthWhiteColumn: 190,
	}).Calibrate(ref)
	require.NoError(t, err)

	assert.Equal(t, byThreshold.Entries(), byGeometry.Entries())
}

func TestThresholdCalibratorUsesFrameColumns(t *testing.T) {
	src := drawTestKeyboard(9, MaxKeys)
	shifted := image.NewRGBA(src.Bounds().Add(image.Pt(100, 0)))
	draw.Draw(shifted, shifted.Bounds(), src, image.Point{}, draw.Src)

	cal := NewThresholdCalibrator(testThresholdOptions())
	atOrigin, err := cal.Calibrate(src)
	require.NoError(t, err)
	moved, err := cal.Calibrate(shifted)
	require.NoError(t, err)

	want := atOrigin.Entries()
	for i := range want {
		want[i].Column += 100
	}
	assert.Equal(t, want, moved.Entries())
	assert.Equal(t, 40, moved.NearestKey(atOrigin.Entries()[40].Column+100))
}

func TestThresholdCalibratorErrors(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 100, 60))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	_, err := NewThresholdCalibrator(testThresholdOptions()).Calibrate(blank)
	assert.ErrorIs(t, err, ErrNoKeys)

	opts := testThresholdOptions()
	opts.WhiteKeyHeight = 60
	_, err = NewThresholdCalibrator(opts).Calibrate(blank)
	assert.ErrorIs(t, err, ErrProbeOutOfRange)
}

func TestGeometryCalibratorStopsAtFrameEdge(t *testing.T) {
	ref := image.NewRGBA(image.Rect(0, 0, 95, 10))

	km, err := NewGeometryCalibrator(GeometryOptions{
		FirstNote:        "C",
		FirstWhiteColumn: 10,
		TenthWhiteColumn: 190,
	}).Calibrate(ref)
	require.NoError(t, err)

	// C1 D E F G at 10..90, blacks at 20 40 80
	assert.Equal(t, []Entry{
		{10, 3}, {20, 4}, {30, 5}, {40, 6}, {50, 7},
		{70, 8}, {80, 9}, {90, 10},
	}, km.Entries())
}

func TestGeometryCalibratorNumbersFromFirstNote(t *testing.T) {
	tests := []struct {
		note     string
		firstKey int
	}{
		{"A", 0},
		{"B", 2},
		{"C", 3},
		{"E", 7},
		{"G", 10},
	}

	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			km, err := NewGeometryCalibrator(GeometryOptions{
				FirstNote:        tt.note,
				FirstWhiteColumn: 10,
				TenthWhiteColumn: 190,
			}).Calibrate(nil)
			require.NoError(t, err)

			entries := km.Entries()
			require.NotEmpty(t, entries)
			assert.Equal(t, tt.firstKey, entries[0].Key)
			assert.Equal(t, MaxKeys-1, km.LastKey())

			// key 0 is A0, MIDI note 21: the leftmost key keeps its letter
			pc, err := PitchClass(tt.note)
			require.NoError(t, err)
			assert.Equal(t, pc, (entries[0].Key+21)%12)
		})
	}
}

func TestGeometryCalibratorKeysCap(t *testing.T) {
	km, err := NewGeometryCalibrator(GeometryOptions{
		FirstNote:        "C",
		FirstWhiteColumn: 10,
		TenthWhiteColumn: 190,
		Keys:             12,
	}).Calibrate(nil)
	require.NoError(t, err)

	assert.Equal(t, 12, km.Len())
	assert.Equal(t, 3, km.Entries()[0].Key)
	assert.Equal(t, 14, km.LastKey())
}

func TestGeometryCalibratorErrors(t *testing.T) {
	_, err := NewGeometryCalibrator(GeometryOptions{FirstNote: "C#", FirstWhiteColumn: 0, TenthWhiteColumn: 90}).Calibrate(nil)
	assert.ErrorIs(t, err, ErrBadGeometry)

	_, err = NewGeometryCalibrator(GeometryOptions{FirstNote: "H", FirstWhiteColumn: 0, TenthWhiteColumn: 90}).Calibrate(nil)
	assert.ErrorIs(t, err, ErrBadGeometry)

	_, err = NewGeometryCalibrator(GeometryOptions{FirstNote: "A", FirstWhiteColumn: 90, TenthWhiteColumn: 90}).Calibrate(nil)
	assert.ErrorIs(t, err, ErrBadGeometry)
}

func TestNearestKey(t *testing.T) {
	km, err := NewKeyMap([]Entry{{50, 2}, {10, 0}, {30, 1}})
	require.NoError(t, err)

	cases := []struct {
		col  float64
		want int
	}{
		{29, 1},
		{20, 0}, // tie: the left neighbour wins
		{40, 1},
		{-5, 0},
		{10, 0},
		{30, 1},
		{31, 1},
		{49, 2},
		{500, 2},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, km.NearestKey(tc.col), "column %.1f", tc.col)
	}
}

func TestNewKeyMapValidation(t *testing.T) {
	_, err := NewKeyMap(nil)
	assert.ErrorIs(t, err, ErrNoKeys)

	_, err = NewKeyMap([]Entry{{10, 1}, {30, 0}})
	assert.ErrorIs(t, err, ErrNotMonotonic)

	_, err = NewKeyMap([]Entry{{10, 1}, {30, 1}})
	assert.ErrorIs(t, err, ErrNotMonotonic)

	_, err = NewKeyMap([]Entry{{10, 88}})
	assert.ErrorIs(t, err, ErrKeyOutOfRange)

	km, err := NewKeyMap([]Entry{{10, 3}, {30, 7}})
	require.NoError(t, err)
	assert.Equal(t, 7, km.LastKey())
}
