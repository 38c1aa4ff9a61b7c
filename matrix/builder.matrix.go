package matrix

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrFrameUnreadable = errors.New("frame unreadable")

// FrameError reports the frame that stopped a build.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// FrameSource gives random access to decoded frames. Frame must be safe to
// call from several goroutines.
type FrameSource interface {
	Len() int
	Frame(i int) (image.Image, error)
}

type Scanner interface {
	Keys() int
	Scan(img image.Image) (left, right []bool, err error)
}

type BuildOptions struct {
	// Workers bounds the frames scanned at once. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
	// Progress, when set, is called after every scanned frame. It may be
	// called from several goroutines.
	Progress func(done, total int)
}

type Result struct {
	Left  *Activity
	Right *Activity
}

const progressLogEvery = 500

type scanned struct {
	left  []bool
	right []bool
}

// Build scans every frame of src and returns one matrix per hand. The first
// frame that cannot be read or scanned aborts the build and no matrix is
// returned.
func Build(ctx context.Context, src FrameSource, scanner Scanner, opts BuildOptions) (*Result, error) {
	var log = opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("matrix.builder")

	var workers = opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var totalFrames = src.Len()
	var keys = scanner.Keys()
	var rows = make([]scanned, totalFrames)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	var failOnce sync.Once
	var fail = func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var finishedFrames atomic.Uint64
	var startTime = time.Now()

	log.Info("scanning frames", zap.Int("frames", totalFrames), zap.Int("keys", keys), zap.Int("workers", workers))

dispatch:
	for i := 0; i < totalFrames; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			img, err := src.Frame(i)
			if err != nil {
				fail(&FrameError{Index: i, Err: fmt.Errorf("%w: %w", ErrFrameUnreadable, err)})
				return
			}

			left, right, err := scanner.Scan(img)
			if err != nil {
				fail(&FrameError{Index: i, Err: err})
				return
			}
			rows[i] = scanned{left: left, right: right}

			f := finishedFrames.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(f), totalFrames)
			}
			if f%progressLogEvery == 0 {
				log.Debug("finished frames",
					zap.Uint64("done", f),
					zap.Int("total", totalFrames),
					zap.Float64("avgSecondsPerFrame", time.Since(startTime).Seconds()/float64(f)))
			}
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		var fe *FrameError
		if errors.As(firstErr, &fe) {
			log.Error("scan aborted", zap.Int("frame", fe.Index), zap.Error(fe.Err))
		}
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var res = &Result{Left: New(totalFrames, keys), Right: New(totalFrames, keys)}
	for i, r := range rows {
		res.Left.setRow(i, r.left)
		res.Right.setRow(i, r.right)
	}

	var elapsed = time.Since(startTime)
	var avg float64
	if totalFrames > 0 {
		avg = elapsed.Seconds() / float64(totalFrames)
	}
	log.Info("finished frames",
		zap.Int("frames", totalFrames),
		zap.Duration("elapsed", elapsed),
		zap.Float64("avgSecondsPerFrame", avg))

	return res, nil
}
