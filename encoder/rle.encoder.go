package encoder

// Run is Length consecutive frames holding Value.
type Run struct {
	Value  bool
	Length int
}

// Span is a run placed on the time axis: Value holds from frame Start until
// the next span starts.
type Span struct {
	Value bool
	Start int
}

// RunLengthEncode compresses one key's timeline. Every frame is covered,
// including a trailing run of length one.
func RunLengthEncode(col []bool) []Run {
	if len(col) == 0 {
		return nil
	}

	var runs = []Run{}
	var count = 1
	for i := 1; i < len(col); i++ {
		if col[i] == col[i-1] {
			count++
			continue
		}
		runs = append(runs, Run{Value: col[i-1], Length: count})
		count = 1
	}
	return append(runs, Run{Value: col[len(col)-1], Length: count})
}

// Absolutize turns run lengths into start frames by a running sum.
func Absolutize(runs []Run) []Span {
	var spans = make([]Span, len(runs))
	var start = 0
	for i, r := range runs {
		spans[i] = Span{Value: r.Value, Start: start}
		start += r.Length
	}
	return spans
}

// Expand is the inverse of Absolutize followed by RunLengthEncode: it
// rebuilds a frames-long timeline from spans.
func Expand(spans []Span, frames int) []bool {
	var col = make([]bool, frames)
	for i, s := range spans {
		var end = frames
		if i+1 < len(spans) && spans[i+1].Start < end {
			end = spans[i+1].Start
		}
		for f := s.Start; f < end; f++ {
			col[f] = s.Value
		}
	}
	return col
}
