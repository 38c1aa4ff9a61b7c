package keyboard

import (
	"fmt"
	"strings"
)

// lowestPitchClass is the pitch class of key 0, A0.
const lowestPitchClass = 9

var blackKeysInOctave = map[int]bool{1: true, 3: true, 6: true, 8: true, 10: true}

var noteNames = map[string]int{
	"C": 0, "C#": 1, "DB": 1,
	"D": 2, "D#": 3, "EB": 3,
	"E": 4,
	"F": 5, "F#": 6, "GB": 6,
	"G": 7, "G#": 8, "AB": 8,
	"A": 9, "A#": 10, "BB": 10,
	"B": 11,
}

// IsWhiteNote reports whether pitch class pc (0 = C) is a white key.
func IsWhiteNote(pc int) bool {
	return !blackKeysInOctave[((pc%12)+12)%12]
}

// PitchClass parses a note letter such as "A", "C#" or "Bb".
func PitchClass(name string) (int, error) {
	pc, ok := noteNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown note %q", ErrBadGeometry, name)
	}
	return pc, nil
}
