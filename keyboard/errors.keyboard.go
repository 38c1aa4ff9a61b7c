package keyboard

import "errors"

var (
	ErrNoKeys          = errors.New("no keys detected on the reference frame")
	ErrNotMonotonic    = errors.New("key indices do not increase with the column")
	ErrKeyOutOfRange   = errors.New("key index outside the keyboard")
	ErrProbeOutOfRange = errors.New("probe row outside the reference frame")
	ErrBadGeometry     = errors.New("invalid keyboard geometry")
)
