package encoder

import (
	"fmt"
	"sort"

	"video2midi/keyboard"
)

type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
)

func (k Kind) String() string {
	if k == NoteOn {
		return "Note_on_c"
	}
	return "Note_off_c"
}

const (
	OnVelocity  = 127
	OffVelocity = 0
)

type Event struct {
	Key  int
	Kind Kind
	Tick int
}

// Columns is the read side of an activity matrix.
type Columns interface {
	Frames() int
	Keys() int
	Column(key int) []bool
}

// EncodeHand turns every key's timeline into note events and returns them
// sorted by tick. Events on the same tick keep key order.
//
// Unlike the plain frame-to-event rules, a note still sounding after the
// last frame gets a NoteOff at the tick of the frame count. This keeps every
// track balanced and moves the track's end marker past that NoteOff.
//
// hand may have at most keyboard.MaxKeys columns so every key maps to a
// MIDI note under a valid Tempo.
func EncodeHand(hand Columns, fps int, tempo Tempo) ([]Event, error) {
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	if hand.Keys() > keyboard.MaxKeys {
		return nil, fmt.Errorf("%w: %d columns, at most %d", ErrTooManyKeys, hand.Keys(), keyboard.MaxKeys)
	}

	var frames = hand.Frames()
	var events = []Event{}

	for key := 0; key < hand.Keys(); key++ {
		var spans = Absolutize(RunLengthEncode(hand.Column(key)))
		for i, s := range spans {
			if s.Value {
				events = append(events, Event{Key: key, Kind: NoteOn, Tick: tempo.Tick(s.Start, fps)})
			} else if i > 0 {
				events = append(events, Event{Key: key, Kind: NoteOff, Tick: tempo.Tick(s.Start, fps)})
			}
		}
		if len(spans) > 0 && spans[len(spans)-1].Value {
			events = append(events, Event{Key: key, Kind: NoteOff, Tick: tempo.Tick(frames, fps)})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Tick < events[j].Tick
	})
	return events, nil
}
