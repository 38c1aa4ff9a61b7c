package matrix

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Activity is a frames x keys grid of booleans. Cell (f, k) is true when key
// k sounds in frame f.
type Activity struct {
	frames int
	keys   int
	cells  []bool
}

func New(frames, keys int) *Activity {
	if frames < 0 {
		frames = 0
	}
	if keys < 0 {
		keys = 0
	}
	return &Activity{frames: frames, keys: keys, cells: make([]bool, frames*keys)}
}

func (a *Activity) Frames() int { return a.frames }
func (a *Activity) Keys() int   { return a.keys }

func (a *Activity) At(frame, key int) bool {
	return a.cells[frame*a.keys+key]
}

func (a *Activity) Set(frame, key int, v bool) {
	a.cells[frame*a.keys+key] = v
}

// Row returns a copy of the keys sounding in frame.
func (a *Activity) Row(frame int) []bool {
	var out = make([]bool, a.keys)
	copy(out, a.cells[frame*a.keys:(frame+1)*a.keys])
	return out
}

func (a *Activity) setRow(frame int, row []bool) {
	copy(a.cells[frame*a.keys:(frame+1)*a.keys], row)
}

// Column returns the timeline of key, one value per frame.
func (a *Activity) Column(key int) []bool {
	var out = make([]bool, a.frames)
	for f := 0; f < a.frames; f++ {
		out[f] = a.cells[f*a.keys+key]
	}
	return out
}

// FromRows builds a matrix from per-frame rows, which must all have the
// same length.
func FromRows(rows [][]bool) (*Activity, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}

	var a = New(len(rows), len(rows[0]))
	for f, row := range rows {
		if len(row) != a.keys {
			return nil, fmt.Errorf("row %d has %d keys, row 0 has %d", f, len(row), a.keys)
		}
		a.setRow(f, row)
	}
	return a, nil
}

// Equal reports whether both matrices have the same shape and cells.
func (a *Activity) Equal(b *Activity) bool {
	if a.frames != b.frames || a.keys != b.keys {
		return false
	}
	for i := range a.cells {
		if a.cells[i] != b.cells[i] {
			return false
		}
	}
	return true
}

// MarshalJSON writes the matrix as rows of 0/1 numbers, the same shape as a
// numeric array dump.
func (a *Activity) MarshalJSON() ([]byte, error) {
	var rows = make([][]uint8, a.frames)
	for f := range rows {
		rows[f] = make([]uint8, a.keys)
		for k := 0; k < a.keys; k++ {
			if a.At(f, k) {
				rows[f][k] = 1
			}
		}
	}
	return json.Marshal(rows)
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	var rows [][]uint8
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	var bools = make([][]bool, len(rows))
	for f, row := range rows {
		bools[f] = make([]bool, len(row))
		for k, v := range row {
			bools[f][k] = v != 0
		}
	}

	parsed, err := FromRows(bools)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

type activityWire struct {
	Frames int
	Keys   int
	Bits   []byte
}

// GobEncode packs the cells eight to a byte.
func (a *Activity) GobEncode() ([]byte, error) {
	var wire = activityWire{Frames: a.frames, Keys: a.keys, Bits: make([]byte, (len(a.cells)+7)/8)}
	for i, v := range a.cells {
		if v {
			wire.Bits[i/8] |= 1 << (i % 8)
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *Activity) GobDecode(data []byte) error {
	var wire activityWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	if wire.Frames < 0 || wire.Keys < 0 || len(wire.Bits) != (wire.Frames*wire.Keys+7)/8 {
		return fmt.Errorf("corrupt activity matrix: %dx%d with %d bytes", wire.Frames, wire.Keys, len(wire.Bits))
	}

	*a = *New(wire.Frames, wire.Keys)
	for i := range a.cells {
		a.cells[i] = wire.Bits[i/8]&(1<<(i%8)) != 0
	}
	return nil
}
