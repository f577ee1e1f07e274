package infill

import (
	"fmt"
	"strings"
)

// Pattern selects how sparse infill is laid down.
type Pattern int

const (
	// Lines fills with parallel lines along X only.
	Lines Pattern = iota
	// Grid fills with lines along both X and Y.
	Grid
)

// ParsePattern returns the Pattern named by s (case-insensitive).
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lines":
		return Lines, nil
	case "grid":
		return Grid, nil
	}
	return 0, fmt.Errorf("unknown infill pattern %q (want lines or grid)", s)
}

func (p Pattern) String() string {
	switch p {
	case Lines:
		return "lines"
	case Grid:
		return "grid"
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// Angles returns the scan directions the pattern uses, in emission order.
func (p Pattern) Angles() []Direction {
	switch p {
	case Lines:
		return []Direction{AlongX}
	case Grid:
		return []Direction{AlongX, AlongY}
	}
	return []Direction{AlongX}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pattern) MarshalText() ([]byte, error) {
	switch p {
	case Lines, Grid:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("unknown infill pattern %d", int(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	v, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Set and Type let a Pattern be used directly as a command line flag value.
func (p *Pattern) Set(s string) error { return p.UnmarshalText([]byte(s)) }

func (p *Pattern) Type() string { return "pattern" }

// Direction is the orientation of a set of scan lines.
type Direction int

const (
	// AlongX lines run parallel to the X axis (0 degrees).
	AlongX Direction = iota
	// AlongY lines run parallel to the Y axis (90 degrees).
	AlongY
)

// Degrees returns the angle of the scan lines measured from the X axis.
func (d Direction) Degrees() float64 {
	switch d {
	case AlongX:
		return 0
	case AlongY:
		return 90
	}
	return 0
}

func (d Direction) String() string { return fmt.Sprintf("%v°", d.Degrees()) }
