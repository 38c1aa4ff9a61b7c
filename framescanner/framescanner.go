package framescanner

import (
	"errors"
	"fmt"
	"image"

	"video2midi/keyboard"
	"video2midi/pixelcolor"
)

var (
	ErrReadHeightOutOfRange = errors.New("read height needs a row above and below it inside the frame")
	ErrMissingCalibration   = errors.New("scanner needs a key map and a classifier")
)

type Options struct {
	// ReadHeight is the row sampled on every frame, just above the keyboard.
	ReadHeight int
	// Gap is the longest run still treated as noise; only runs longer than
	// Gap become notes.
	Gap int

	KeyMap     *keyboard.KeyMap
	Classifier *pixelcolor.Classifier
}

// Scanner reads one row of a frame into per-key activity. It holds only
// read-only state and is safe for concurrent use.
type Scanner struct {
	readHeight int
	gap        int
	keys       int
	keyMap     *keyboard.KeyMap
	classifier *pixelcolor.Classifier
}

func New(opts Options) (*Scanner, error) {
	if opts.KeyMap == nil || opts.Classifier == nil {
		return nil, ErrMissingCalibration
	}
	if opts.Gap < 0 {
		return nil, fmt.Errorf("scan gap must not be negative, got %d", opts.Gap)
	}

	return &Scanner{
		readHeight: opts.ReadHeight,
		gap:        opts.Gap,
		keys:       opts.KeyMap.LastKey() + 1,
		keyMap:     opts.KeyMap,
		classifier: opts.Classifier,
	}, nil
}

// Keys is the length of the vectors Scan returns.
func (s *Scanner) Keys() int { return s.keys }

// Scan returns which keys sound in img for each hand. Both vectors are
// Keys() long. The only error is a read height without a row above and
// below it.
func (s *Scanner) Scan(img image.Image) (left, right []bool, err error) {
	var bounds = img.Bounds()
	if s.readHeight-1 < bounds.Min.Y || s.readHeight+1 >= bounds.Max.Y {
		return nil, nil, fmt.Errorf("%w: row %d, frame rows [%d, %d)",
			ErrReadHeightOutOfRange, s.readHeight, bounds.Min.Y, bounds.Max.Y)
	}

	left = make([]bool, s.keys)
	right = make([]bool, s.keys)

	var row = s.classifier.ClassifyRow(img, s.readHeight)
	denoise(row)

	for _, r := range findRuns(row, s.gap) {
		var x = bounds.Min.X + r.mid
		if s.classifier.Classify(img.At(x, s.readHeight-1)) == pixelcolor.Background ||
			s.classifier.Classify(img.At(x, s.readHeight+1)) == pixelcolor.Background {
			continue
		}

		var key = s.keyMap.NearestKey(float64(x))
		switch r.hand {
		case pixelcolor.LeftHand:
			left[key] = true
		case pixelcolor.RightHand:
			right[key] = true
		}
	}

	return left, right, nil
}
