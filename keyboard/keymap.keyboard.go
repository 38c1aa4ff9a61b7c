package keyboard

import (
	"fmt"
	"image"
	"sort"

	"golang.org/x/exp/constraints"
)

// MaxKeys is the size of a full piano keyboard. Key indices live in [0, MaxKeys).
const MaxKeys = 88

type Entry struct {
	Column float64 `json:"column"`
	Key    int     `json:"key"`
}

// KeyMap maps key-center columns to key indices. It is built once per song
// and only read afterwards.
type KeyMap struct {
	entries []Entry
	lastKey int
}

type Calibrator interface {
	Calibrate(ref image.Image) (*KeyMap, error)
}

// NewKeyMap sorts entries by column and checks that keys are unique, inside
// the keyboard and increase with the column.
func NewKeyMap(entries []Entry) (*KeyMap, error) {
	if len(entries) == 0 {
		return nil, ErrNoKeys
	}

	var sorted = make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Column < sorted[j].Column
	})

	var lastKey = -1
	for i, e := range sorted {
		if e.Key < 0 || e.Key >= MaxKeys {
			return nil, fmt.Errorf("%w: key %d at column %.1f", ErrKeyOutOfRange, e.Key, e.Column)
		}
		if i > 0 && (e.Key <= sorted[i-1].Key || e.Column == sorted[i-1].Column) {
			return nil, fmt.Errorf("%w: key %d at column %.1f follows key %d at column %.1f",
				ErrNotMonotonic, e.Key, e.Column, sorted[i-1].Key, sorted[i-1].Column)
		}
		if e.Key > lastKey {
			lastKey = e.Key
		}
	}

	return &KeyMap{entries: sorted, lastKey: lastKey}, nil
}

func (m *KeyMap) Len() int { return len(m.entries) }

// LastKey is the highest key index. Activity vectors are LastKey()+1 long.
func (m *KeyMap) LastKey() int { return m.lastKey }

func (m *KeyMap) Entries() []Entry {
	var out = make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// NearestKey returns the key whose center is closest to col. On a tie the
// entry with the smaller column wins.
func (m *KeyMap) NearestKey(col float64) int {
	var i = sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].Column >= col
	})

	if i == 0 {
		return m.entries[0].Key
	}
	if i == len(m.entries) {
		return m.entries[len(m.entries)-1].Key
	}

	var before = m.entries[i-1]
	var after = m.entries[i]
	if absDiff(after.Column, col) < absDiff(col, before.Column) {
		return after.Key
	}
	return before.Key
}

func absDiff[T constraints.Integer | constraints.Float](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}
