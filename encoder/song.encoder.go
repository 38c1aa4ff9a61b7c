package encoder

import "fmt"

const (
	RightHandTitle = "Right Hand"
	LeftHandTitle  = "Left Hand"
)

type Track struct {
	Number int
	Title  string
	Events []Event
	// End is the tick of the end of track marker.
	End int
}

// Output is one playable file: a header and its tracks.
type Output struct {
	Name   string
	Tempo  Tempo
	Tracks []Track
}

// Song holds the three renderings of one performance. All of them carry the
// same events; only the track layout differs.
type Song struct {
	Combined  Output
	RightOnly Output
	LeftOnly  Output
}

func (s Song) Outputs() []Output {
	return []Output{s.Combined, s.RightOnly, s.LeftOnly}
}

func NewSong(left, right Columns, fps int, tempo Tempo) (Song, error) {
	if err := tempo.Validate(); err != nil {
		return Song{}, err
	}
	if left.Frames() != right.Frames() {
		return Song{}, fmt.Errorf("hands disagree on length: left %d frames, right %d", left.Frames(), right.Frames())
	}

	leftEvents, err := EncodeHand(left, fps, tempo)
	if err != nil {
		return Song{}, fmt.Errorf("left hand: %w", err)
	}
	rightEvents, err := EncodeHand(right, fps, tempo)
	if err != nil {
		return Song{}, fmt.Errorf("right hand: %w", err)
	}

	return Song{
		Combined: Output{Name: "combined", Tempo: tempo, Tracks: []Track{
			newTrack(1, RightHandTitle, rightEvents, tempo),
			newTrack(2, LeftHandTitle, leftEvents, tempo),
		}},
		RightOnly: Output{Name: "right", Tempo: tempo, Tracks: []Track{
			newTrack(1, RightHandTitle, rightEvents, tempo),
		}},
		LeftOnly: Output{Name: "left", Tempo: tempo, Tracks: []Track{
			newTrack(1, LeftHandTitle, leftEvents, tempo),
		}},
	}, nil
}

func newTrack(number int, title string, events []Event, tempo Tempo) Track {
	var last = 0
	if len(events) > 0 {
		last = events[len(events)-1].Tick
	}
	return Track{Number: number, Title: title, Events: events, End: last + tempo.EndPadding}
}
