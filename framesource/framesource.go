package framesource

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const DefaultPattern = "frame_%d.png"

var ErrNoFrames = errors.New("no frames found")

// Dir serves numbered frame images from a directory, frame i being
// fmt.Sprintf(pattern, i).
type Dir struct {
	dir     string
	pattern string
	count   int
}

// NewDir opens a frame directory. With count zero, frames are counted from
// frame 0 up to the first missing file.
func NewDir(dir, pattern string, count int) (*Dir, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	var d = &Dir{dir: dir, pattern: pattern, count: count}
	if count > 0 {
		return d, nil
	}

	for {
		if _, err := os.Stat(d.Path(d.count)); err != nil {
			break
		}
		d.count++
	}
	if d.count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, d.Path(0))
	}
	return d, nil
}

func (d *Dir) Len() int { return d.count }

func (d *Dir) Dir() string { return d.dir }

func (d *Dir) Path(i int) string {
	return filepath.Join(d.dir, fmt.Sprintf(d.pattern, i))
}

func (d *Dir) Frame(i int) (image.Image, error) {
	if i < 0 || i >= d.count {
		return nil, fmt.Errorf("frame %d outside [0, %d)", i, d.count)
	}
	return LoadImage(d.Path(i))
}

// Remove deletes the frame files and then the directory if it is empty.
func (d *Dir) Remove() error {
	var wg sync.WaitGroup
	const maxWorkers = 100
	sem := make(chan struct{}, maxWorkers)

	var mu sync.Mutex
	var errs []error

	for i := 0; i < d.count; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(f string) {
			defer wg.Done()
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			<-sem
		}(d.Path(i))
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if entries, err := os.ReadDir(d.dir); err == nil && len(entries) == 0 {
		return os.Remove(d.dir)
	}
	return nil
}

// LoadImage decodes a jpeg, png, bmp or webp file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// BaseName is the file name of path without directory and extension.
func BaseName(filePath string) string {
	fileName := filepath.Base(filePath)
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}
