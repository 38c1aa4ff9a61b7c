package keyboard

import (
	"fmt"
	"image"
	"image/color"

	"go.uber.org/zap"
)

type ThresholdOptions struct {
	// BlackKeyHeight is a row that crosses the black keys.
	BlackKeyHeight int
	// WhiteKeyHeight is a lower row where only white keys are visible.
	WhiteKeyHeight int
	// Threshold separates lit pixels (> Threshold) from dark ones.
	Threshold uint8
	// Gap is the shortest run accepted as a key; shorter runs are the
	// thin dark lines between neighbouring white keys, or noise.
	Gap int

	Logger *zap.Logger
}

// ThresholdCalibrator finds key centers by binarizing two probe rows of a
// frame where nothing covers the keyboard.
type ThresholdCalibrator struct {
	opts ThresholdOptions
	log  *zap.Logger
}

func NewThresholdCalibrator(opts ThresholdOptions) *ThresholdCalibrator {
	var log = opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ThresholdCalibrator{opts: opts, log: log.Named("keyboard.threshold")}
}

type runStats struct {
	accepted   int
	suppressed int
	dropped    int
}

func (c *ThresholdCalibrator) Calibrate(ref image.Image) (*KeyMap, error) {
	if ref == nil {
		return nil, fmt.Errorf("calibrate: %w", ErrNoKeys)
	}

	blackRow, err := c.binarize(ref, c.opts.BlackKeyHeight)
	if err != nil {
		return nil, fmt.Errorf("black key probe: %w", err)
	}
	whiteRow, err := c.binarize(ref, c.opts.WhiteKeyHeight)
	if err != nil {
		return nil, fmt.Errorf("white key probe: %w", err)
	}

	// probe rows are indexed from the left edge; key map columns are frame
	// coordinates, the same ones the scanner reads
	var originX = float64(ref.Bounds().Min.X)
	var entries = []Entry{}
	var used = map[int]bool{}

	// Every accepted run at the black key height is one physical key, lit
	// or dark. Only the dark ones are recorded here; the counter still
	// advances for the lit ones so black keys get their chromatic index.
	var onKey = 0
	var blackStats = scanRuns(blackRow, c.opts.Gap, func(mid float64) bool {
		var key = onKey
		onKey++
		if blackRow[int(mid)] || key >= MaxKeys {
			return false
		}
		entries = append(entries, Entry{Column: originX + mid, Key: key})
		used[key] = true
		return true
	})

	var whiteStats = scanRuns(whiteRow, c.opts.Gap, func(mid float64) bool {
		var key = firstUnused(used)
		if key < 0 || !whiteRow[int(mid)] {
			return false
		}
		entries = append(entries, Entry{Column: originX + mid, Key: key})
		used[key] = true
		return true
	})

	c.log.Debug("probe rows scanned",
		zap.Int("blackAccepted", blackStats.accepted),
		zap.Int("blackSuppressed", blackStats.suppressed),
		zap.Int("blackSkipped", blackStats.dropped),
		zap.Int("whiteAccepted", whiteStats.accepted),
		zap.Int("whiteSuppressed", whiteStats.suppressed),
		zap.Int("whiteDropped", whiteStats.dropped),
	)

	km, err := NewKeyMap(entries)
	if err != nil {
		return nil, err
	}

	c.log.Info("keyboard calibrated", zap.Int("keys", km.Len()), zap.Int("lastKey", km.LastKey()))
	return km, nil
}

// binarize reads row y as lit (true) or dark (false) pixels.
func (c *ThresholdCalibrator) binarize(img image.Image, y int) ([]bool, error) {
	var bounds = img.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("%w: row %d, frame rows [%d, %d)", ErrProbeOutOfRange, y, bounds.Min.Y, bounds.Max.Y)
	}

	var row = make([]bool, bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		row[x-bounds.Min.X] = intensity(img.At(x, y)) > c.opts.Threshold
	}
	return row, nil
}

func intensity(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// scanRuns walks row left to right and calls accept with the midpoint of
// every run that is at least gap columns long. Shorter runs are suppressed:
// the run start moves to the boundary and nothing is emitted. accept reports
// whether the run was kept.
func scanRuns(row []bool, gap int, accept func(mid float64) bool) runStats {
	var stats runStats
	var runStart = 0

	for i := 1; i < len(row); i++ {
		if row[i] == row[i-1] {
			continue
		}

		if i-runStart < gap {
			stats.suppressed++
			runStart = i
			continue
		}

		var mid = float64(runStart+i) / 2
		if accept(mid) {
			stats.accepted++
		} else {
			stats.dropped++
		}
		runStart = i
	}

	return stats
}

func firstUnused(used map[int]bool) int {
	for key := 0; key < MaxKeys; key++ {
		if !used[key] {
			return key
		}
	}
	return -1
}
