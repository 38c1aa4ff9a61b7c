package midifile

import (
	"fmt"

	"video2midi/encoder"
)

// Song is a tonejs-like JSON shape of an output, for viewers that cannot
// read MIDI.
type Song struct {
	Header struct {
		Name   string `json:"name"`
		Ppq    int    `json:"ppq"`
		Tempos []struct {
			Bpm   float64 `json:"bpm"`
			Ticks int     `json:"ticks"`
		} `json:"tempos"`
	} `json:"header"`
	Tracks []Track `json:"tracks"`
}

type Track struct {
	Channel         int        `json:"channel"`
	Name            string     `json:"name"`
	Notes           []JSONNote `json:"notes"`
	EndOfTrackTicks int        `json:"endOfTrackTicks"`
}

type JSONNote struct {
	Duration      float64 `json:"duration"`
	DurationTicks int     `json:"durationTicks"`
	Midi          int     `json:"midi"`
	Name          string  `json:"name"`
	Ticks         int     `json:"ticks"`
	Time          float64 `json:"time"`
	Velocity      float64 `json:"velocity"`
}

var pitchNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(midi int) string {
	return fmt.Sprintf("%s%d", pitchNames[midi%12], midi/12-1)
}

// ToJSON pairs every NoteOn with the next NoteOff of the same key.
func ToJSON(o encoder.Output) Song {
	var s Song
	s.Header.Name = o.Name
	s.Header.Ppq = o.Tempo.PPQ
	s.Header.Tempos = append(s.Header.Tempos, struct {
		Bpm   float64 `json:"bpm"`
		Ticks int     `json:"ticks"`
	}{Bpm: float64(o.Tempo.BPM), Ticks: 0})

	var secondsPerTick = 60 / float64(o.Tempo.BPM) / float64(o.Tempo.PPQ)

	s.Tracks = []Track{}
	for _, t := range o.Tracks {
		var track = Track{Channel: channel, Name: t.Title, Notes: []JSONNote{}, EndOfTrackTicks: t.End}
		var open = map[int]int{}

		for _, ev := range t.Events {
			if ev.Kind == encoder.NoteOn {
				open[ev.Key] = ev.Tick
				continue
			}
			start, ok := open[ev.Key]
			if !ok {
				continue
			}
			delete(open, ev.Key)

			var midi = ev.Key + o.Tempo.KeyOffset
			track.Notes = append(track.Notes, JSONNote{
				Duration:      float64(ev.Tick-start) * secondsPerTick,
				DurationTicks: ev.Tick - start,
				Midi:          midi,
				Name:          noteName(midi),
				Ticks:         start,
				Time:          float64(start) * secondsPerTick,
				Velocity:      float64(encoder.OnVelocity) / 127,
			})
		}
		s.Tracks = append(s.Tracks, track)
	}

	return s
}
