package encoder

import (
	"bufio"
	"fmt"
	"io"
)

// Lines renders the output in the midicsv text format, one record per line
// without the trailing newline.
func (o Output) Lines() []string {
	var lines = []string{fmt.Sprintf("0, 0, Header, 1, %d, %d", len(o.Tracks), o.Tempo.PPQ)}

	for _, tr := range o.Tracks {
		lines = append(lines,
			fmt.Sprintf("%d, 0, Start_track", tr.Number),
			fmt.Sprintf("%d, 0, Title_t, %q", tr.Number, tr.Title),
			fmt.Sprintf("%d, 0, Tempo, %d", tr.Number, o.Tempo.MicrosPerQuarter()),
		)
		for _, ev := range tr.Events {
			var velocity = OnVelocity
			if ev.Kind == NoteOff {
				velocity = OffVelocity
			}
			lines = append(lines, fmt.Sprintf("%d, %d, %s, 0, %d, %d",
				tr.Number, ev.Tick, ev.Kind, ev.Key+o.Tempo.KeyOffset, velocity))
		}
		lines = append(lines, fmt.Sprintf("%d, %d, End_track", tr.Number, tr.End))
	}

	return append(lines, "0, 0, End_of_file")
}

func (o Output) WriteCSV(w io.Writer) error {
	var bw = bufio.NewWriter(w)
	for _, l := range o.Lines() {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
