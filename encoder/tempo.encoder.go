package encoder

import (
	"errors"
	"fmt"

	"video2midi/keyboard"
)

var (
	ErrInvalidFPS   = errors.New("frames per second must be positive")
	ErrInvalidTempo = errors.New("invalid tempo")
	ErrTooManyKeys  = errors.New("more key columns than a piano has")
)

// Tempo holds the fixed timing constants of the generated tracks. They are
// conventions of the output, not properties of the video.
type Tempo struct {
	BPM int `yaml:"bpm" json:"bpm"`
	PPQ int `yaml:"ppq" json:"ppq"`
	// KeyOffset maps key index 0 to a MIDI note number (21 = A0).
	KeyOffset int `yaml:"keyOffset" json:"keyOffset"`
	// EndPadding is the distance in ticks from the last event to the end
	// of track marker.
	EndPadding int `yaml:"endPadding" json:"endPadding"`
}

func DefaultTempo() Tempo {
	return Tempo{BPM: 100, PPQ: 1800, KeyOffset: 21, EndPadding: 5000}
}

func (t Tempo) Validate() error {
	if t.BPM <= 0 {
		return fmt.Errorf("%w: bpm %d", ErrInvalidTempo, t.BPM)
	}
	if t.PPQ <= 0 || t.PPQ > 0x7FFF {
		return fmt.Errorf("%w: ppq %d outside [1, 32767]", ErrInvalidTempo, t.PPQ)
	}
	if t.KeyOffset < 0 || t.KeyOffset+keyboard.MaxKeys-1 > 127 {
		return fmt.Errorf("%w: key offset %d leaves the MIDI note range", ErrInvalidTempo, t.KeyOffset)
	}
	if t.EndPadding < 0 {
		return fmt.Errorf("%w: end padding %d", ErrInvalidTempo, t.EndPadding)
	}
	return nil
}

func (t Tempo) TicksPerMs() float64 {
	return float64(t.BPM*t.PPQ) / 60000
}

func (t Tempo) MicrosPerQuarter() int {
	return 60000000 / t.BPM
}

// Tick converts a frame index to ticks, truncating. The product is kept in
// integers so whole ticks are never lost to float rounding.
func (t Tempo) Tick(frame, fps int) int {
	return int(int64(frame) * int64(t.BPM) * int64(t.PPQ) / (60 * int64(fps)))
}
