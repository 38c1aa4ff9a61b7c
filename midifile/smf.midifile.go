package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"video2midi/encoder"
)

const channel = 0

var ErrNoteOutOfRange = errors.New("note outside the MIDI range")

// Build lays an output out as a format 1 standard MIDI file.
func Build(o encoder.Output) (*smf.SMF, error) {
	if err := o.Tempo.Validate(); err != nil {
		return nil, err
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(o.Tempo.PPQ)

	for _, t := range o.Tracks {
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(t.Title))
		tr.Add(0, smf.MetaTempo(float64(o.Tempo.BPM)))

		var at = 0
		for _, ev := range t.Events {
			if ev.Tick < at {
				return nil, fmt.Errorf("track %d: event at tick %d after tick %d", t.Number, ev.Tick, at)
			}
			var note = ev.Key + o.Tempo.KeyOffset
			if note < 0 || note > 127 {
				return nil, fmt.Errorf("track %d: %w: key %d is MIDI note %d", t.Number, ErrNoteOutOfRange, ev.Key, note)
			}
			var key = uint8(note)
			var delta = uint32(ev.Tick - at)
			if ev.Kind == encoder.NoteOn {
				tr.Add(delta, midi.NoteOn(channel, key, encoder.OnVelocity))
			} else {
				tr.Add(delta, midi.NoteOff(channel, key))
			}
			at = ev.Tick
		}

		var end = t.End
		if end < at {
			end = at
		}
		tr.Close(uint32(end - at))

		if err := s.Add(tr); err != nil {
			return nil, fmt.Errorf("track %d: %w", t.Number, err)
		}
	}

	return s, nil
}

func Write(w io.Writer, o encoder.Output) error {
	s, err := Build(o)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

type Note struct {
	Tick     int   `json:"tick"`
	On       bool  `json:"on"`
	Key      uint8 `json:"key"`
	Velocity uint8 `json:"velocity"`
}

type TrackSummary struct {
	Name  string  `json:"name"`
	BPM   float64 `json:"bpm"`
	Notes []Note  `json:"notes"`
	End   int     `json:"end"`
}

type Summary struct {
	PPQ    int            `json:"ppq"`
	Tracks []TrackSummary `json:"tracks"`
}

// Read parses a standard MIDI file back into absolute-tick note events.
func Read(r io.Reader) (sum *Summary, e error) {
	// the smf reader panics on some malformed input
	defer func() {
		if p := recover(); p != nil {
			sum = nil
			e = fmt.Errorf("parse midi: %v", p)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse midi: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("parse midi: only metric time formats are supported")
	}

	sum = &Summary{PPQ: int(ticks.Resolution())}
	for _, tr := range s.Tracks {
		var ts = TrackSummary{Notes: []Note{}}
		var abs = 0
		for _, ev := range tr {
			abs += int(ev.Delta)

			var ch, key, vel uint8
			var bpm float64
			var name string
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				ts.Notes = append(ts.Notes, Note{Tick: abs, On: true, Key: key, Velocity: vel})
			case ev.Message.GetNoteOn(&ch, &key, &vel), ev.Message.GetNoteOff(&ch, &key, &vel):
				ts.Notes = append(ts.Notes, Note{Tick: abs, Key: key})
			case ev.Message.GetMetaTempo(&bpm):
				ts.BPM = math.Round(bpm*1000) / 1000
			case ev.Message.GetMetaTrackName(&name):
				ts.Name = name
			}
		}
		ts.End = abs
		sum.Tracks = append(sum.Tracks, ts)
	}

	return sum, nil
}
