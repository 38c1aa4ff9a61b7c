package matrix

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// Dump is what a scan leaves behind for the encode step: both hands and
// the frame rate they were sampled at.
type Dump struct {
	FPS   int
	Left  *Activity
	Right *Activity
}

func WriteDump(w io.Writer, d Dump) error {
	if d.Left == nil || d.Right == nil {
		return errors.New("dump needs both hands")
	}
	return gob.NewEncoder(w).Encode(d)
}

func ReadDump(r io.Reader) (Dump, error) {
	var d Dump
	if err := gob.NewDecoder(r).Decode(&d); err != nil {
		return Dump{}, fmt.Errorf("read matrix dump: %w", err)
	}
	if d.Left == nil || d.Right == nil {
		return Dump{}, errors.New("read matrix dump: missing hand")
	}
	if d.Left.Frames() != d.Right.Frames() {
		return Dump{}, fmt.Errorf("read matrix dump: left has %d frames, right has %d", d.Left.Frames(), d.Right.Frames())
	}
	return d, nil
}
