package gcode

// Extruder accumulates the absolute filament position (the E axis) of one
// program. It starts at zero and never decreases. Each emission run owns
// its own Extruder, so concurrent runs cannot interfere.
type Extruder struct {
	perMM float64
	e     float64
}

// NewExtruder returns an Extruder feeding perMM units of filament per
// millimeter of extruded path.
func NewExtruder(perMM float64) *Extruder {
	return &Extruder{perMM: perMM}
}

// Advance feeds filament for an extruding move of the given length and
// returns the new absolute E value. Non-positive lengths feed nothing.
func (x *Extruder) Advance(length float64) float64 {
	if length > 0 && x.perMM > 0 {
		x.e += length * x.perMM
	}
	return x.e
}

// Value returns the current absolute E value.
func (x *Extruder) Value() float64 { return x.e }
