package converter

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video2midi/config"
	"video2midi/encoder"
	"video2midi/framescanner"
	"video2midi/keyboard"
	"video2midi/matrix"
	"video2midi/pixelcolor"
)

type Options struct {
	Logger *zap.Logger
	// Progress is passed to the matrix builder.
	Progress func(done, total int)
}

// Converter runs calibration, the frame scan and encoding for one
// configuration. It does no file I/O.
type Converter struct {
	cfg        config.Config
	classifier *pixelcolor.Classifier
	log        *zap.Logger
	progress   func(done, total int)
}

type Result struct {
	RunID  string
	KeyMap *keyboard.KeyMap
	Left   *matrix.Activity
	Right  *matrix.Activity
	Song   encoder.Song
}

func New(cfg config.Config, opts Options) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, err
	}

	var log = opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Converter{cfg: cfg, classifier: classifier, log: log, progress: opts.Progress}, nil
}

func (c *Converter) Config() config.Config { return c.cfg }

func (c *Converter) Calibrate(ref image.Image) (*keyboard.KeyMap, error) {
	if ref == nil {
		return nil, fmt.Errorf("calibrate: reference frame missing: %w", keyboard.ErrNoKeys)
	}
	km, err := c.cfg.Calibrator(c.log).Calibrate(ref)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	return km, nil
}

// Convert turns a frame sequence into a song. ref is the frame used for
// calibration. Any failing stage aborts the run and nothing is returned.
func (c *Converter) Convert(ctx context.Context, ref image.Image, src matrix.FrameSource) (*Result, error) {
	var runID = uuid.NewString()
	var log = c.log.With(zap.String("run", runID), zap.String("song", c.cfg.Song.Name))
	var startTime = time.Now()

	km, err := c.Calibrate(ref)
	if err != nil {
		log.Error("calibration failed", zap.Error(err))
		return nil, err
	}
	log.Info("calibrated", zap.Int("keys", km.Len()), zap.Int("lastKey", km.LastKey()))

	scanner, err := framescanner.New(framescanner.Options{
		ReadHeight: c.cfg.Scan.ReadHeight,
		Gap:        c.cfg.Scan.Gap,
		KeyMap:     km,
		Classifier: c.classifier,
	})
	if err != nil {
		return nil, err
	}

	built, err := matrix.Build(ctx, src, scanner, matrix.BuildOptions{
		Workers:  c.cfg.Workers,
		Logger:   log,
		Progress: c.progress,
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	song, err := c.encode(log, built.Left, built.Right, c.cfg.Song.FPS)
	if err != nil {
		return nil, err
	}

	log.Info("conversion finished", zap.Duration("elapsed", time.Since(startTime)))
	return &Result{RunID: runID, KeyMap: km, Left: built.Left, Right: built.Right, Song: song}, nil
}

// Encode runs only the encoding stage on matrices from an earlier scan.
func (c *Converter) Encode(left, right *matrix.Activity, fps int) (encoder.Song, error) {
	return c.encode(c.log, left, right, fps)
}

func (c *Converter) encode(log *zap.Logger, left, right *matrix.Activity, fps int) (encoder.Song, error) {
	song, err := encoder.NewSong(left, right, fps, c.cfg.Tempo)
	if err != nil {
		return encoder.Song{}, fmt.Errorf("encode: %w", err)
	}

	for _, tr := range song.Combined.Tracks {
		log.Info("track encoded",
			zap.String("title", tr.Title),
			zap.Int("events", len(tr.Events)),
			zap.Int("endTick", tr.End))
	}
	return song, nil
}
