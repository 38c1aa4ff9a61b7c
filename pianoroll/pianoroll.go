package pianoroll

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"video2midi/matrix"
)

// ClearFrameName is the reference frame RenderMatrices writes next to the
// numbered frames.
const ClearFrameName = "clear.png"

// Renderer draws synthetic falling-note frames: a keyboard with note bars
// falling onto it, one color per hand.
type Renderer struct {
	layout Layout
	font   *truetype.Font
}

func NewRenderer(l Layout) (*Renderer, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Renderer{layout: l, font: f}, nil
}

func (r *Renderer) Layout() Layout { return r.layout }

func (r *Renderer) KeyCenter(k int) float64 { return r.layout.KeyCenter(k) }

// newFace returns a face for one drawing context; faces keep glyph caches
// and must not be shared between goroutines.
func (r *Renderer) newFace() font.Face {
	if r.layout.LabelH <= 0 {
		return nil
	}
	return truetype.NewFace(r.font, &truetype.Options{Size: float64(r.layout.LabelH) * 0.6})
}

func (r *Renderer) newContext() *gg.Context {
	return gg.NewContext(r.layout.Width(), r.layout.Height())
}

// Clear renders the keyboard with nothing playing, the frame calibration
// reads.
func (r *Renderer) Clear() image.Image {
	return r.Frame(nil, nil)
}

// Frame renders one frame where the given keys of each hand are playing.
// Keys outside the layout are ignored.
func (r *Renderer) Frame(left, right []int) image.Image {
	dc := r.newContext()
	r.drawFrame(dc, r.newFace(), left, right)
	return dc.Image()
}

func (r *Renderer) drawFrame(dc *gg.Context, face font.Face, left, right []int) {
	var notes = map[int]color.RGBA{}
	for _, k := range left {
		if k >= 0 && k < r.layout.Keys {
			notes[k] = r.layout.Left
		}
	}
	for _, k := range right {
		if k >= 0 && k < r.layout.Keys {
			notes[k] = r.layout.Right
		}
	}

	prepareScreen(dc, r.layout)
	drawKeyboard(dc, r.layout, notes)
	drawFallingNotes(dc, r.layout, notes)
	drawCNotesNotation(dc, r.layout, face)
}

type RenderOptions struct {
	// Workers bounds the frames drawn at once. Zero means GOMAXPROCS.
	Workers int
	// Pattern names frame i. Defaults to frame_%d.png.
	Pattern string
	Logger  *zap.Logger
}

// RenderMatrices writes one PNG per frame of the matrices into dir, plus
// the clear reference frame.
func (r *Renderer) RenderMatrices(ctx context.Context, dir string, left, right *matrix.Activity, opts RenderOptions) error {
	if left.Frames() != right.Frames() {
		return fmt.Errorf("hands disagree on length: left %d frames, right %d", left.Frames(), right.Frames())
	}

	var log = opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pianoroll")

	var pattern = opts.Pattern
	if pattern == "" {
		pattern = "frame_%d.png"
	}
	var maxWorkers = opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := gg.SavePNG(filepath.Join(dir, ClearFrameName), r.Clear()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	var failOnce sync.Once

	type worker struct {
		dc   *gg.Context
		face font.Face
	}

	sem := make(chan struct{}, maxWorkers)
	workers := make(chan worker, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		workers <- worker{dc: r.newContext(), face: r.newFace()}
	}

	var wg sync.WaitGroup
	var totalFrames = left.Frames()
	var finishedFrames atomic.Uint64
	var startTime = time.Now()

render:
	for i := 0; i < totalFrames; i++ {
		select {
		case <-ctx.Done():
			break render
		case sem <- struct{}{}:
		}

		wg.Add(1)
		wk := <-workers
		go func(wk worker, i int) {
			defer wg.Done()
			defer func() {
				workers <- wk
				<-sem
			}()

			r.drawFrame(wk.dc, wk.face, activeKeys(left.Row(i)), activeKeys(right.Row(i)))
			if err := wk.dc.SavePNG(filepath.Join(dir, fmt.Sprintf(pattern, i))); err != nil {
				failOnce.Do(func() {
					firstErr = fmt.Errorf("frame %d: %w", i, err)
					cancel()
				})
				return
			}

			f := finishedFrames.Add(1)
			if f%500 == 0 {
				log.Debug("finished frames", zap.Uint64("done", f), zap.Int("total", totalFrames),
					zap.Float64("avgSecondsPerFrame", time.Since(startTime).Seconds()/float64(f)))
			}
		}(wk, i)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("frames rendered", zap.Int("frames", totalFrames), zap.String("dir", dir),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}

func activeKeys(row []bool) []int {
	var keys = []int{}
	for k, on := range row {
		if on {
			keys = append(keys, k)
		}
	}
	return keys
}
