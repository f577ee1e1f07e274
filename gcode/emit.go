// Package gcode writes sliced layers as a G-code program for an FDM
// printer and reads such programs back.
package gcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/infill"
	"github.com/gmlewis/fdm-slicer/slicer"
	"github.com/gmlewis/fdm-slicer/surface"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrLengthMismatch is returned when layers and their classification do
// not line up.
var ErrLengthMismatch = errors.New("layers and sequences differ in length")

// Emit renders the whole program as a string.
func Emit(layers []slicer.Layer, seqs []surface.Sequence, s config.Settings) (string, error) {
	var buf strings.Builder
	if err := Write(&buf, layers, seqs, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders the whole program to w: preamble, every printable layer
// in order, then the postamble.
func Write(w io.Writer, layers []slicer.Layer, seqs []surface.Sequence, s config.Settings) error {
	return WriteContext(context.Background(), w, layers, seqs, s)
}

// WriteContext is Write, stopping between layers once ctx is done.
func WriteContext(ctx context.Context, w io.Writer, layers []slicer.Layer, seqs []surface.Sequence, s config.Settings) error {
	if len(layers) != len(seqs) {
		return fmt.Errorf("%w: %v layers, %v sequences", ErrLengthMismatch, len(layers), len(seqs))
	}

	e := NewEmitter(w, s)
	e.Preamble(len(layers))
	for i := range layers {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Layer(&layers[i], seqs[i])
	}
	e.Postamble()
	return e.Err()
}

// Emitter writes G-code moves for one program. Write errors are sticky:
// after the first failure nothing more is written and Err reports it.
type Emitter struct {
	w   io.Writer
	s   config.Settings
	ext *Extruder
	err error

	printed int // layers emitted so far
}

// NewEmitter returns an Emitter writing to w with a fresh Extruder.
func NewEmitter(w io.Writer, s config.Settings) *Emitter {
	return &Emitter{w: w, s: s, ext: NewExtruder(s.ExtrusionPerMM)}
}

// Err returns the first write error, if any.
func (e *Emitter) Err() error { return e.err }

// E returns the current extrusion value.
func (e *Emitter) E() float64 { return e.ext.Value() }

func (e *Emitter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Preamble writes the header comments, homes the machine and heats the
// bed and nozzle.
func (e *Emitter) Preamble(numLayers int) {
	e.printf("; generated by fdm-slicer\n")
	buf, err := e.s.Marshal()
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("settings: %w", err)
	}
	e.printf(";\n; settings:\n")
	for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
		e.printf(";   %v\n", line)
	}
	e.printf(";\n; layer_height = %.3f\n", e.s.LayerHeight)
	e.printf("; total_layers = %v\n;\n", numLayers)

	e.printf("M140 S%.0f ; bed temperature\n", e.s.BedTemp)
	e.printf("M104 S%.0f ; nozzle temperature\n", e.s.NozzleTemp)
	e.printf("G28 ; home all axes\n")
	e.printf("M190 S%.0f ; wait for bed\n", e.s.BedTemp)
	e.printf("M109 S%.0f ; wait for nozzle\n", e.s.NozzleTemp)
}

// Postamble turns off the heaters and disables the motors.
func (e *Emitter) Postamble() {
	e.printf("; end of print\n")
	e.printf("M104 S0\n")
	e.printf("M140 S0\n")
	e.printf("M84 ; motors off\n")
}

// Layer writes one layer: a Z move carrying the layer marker, the skirt
// on the first printed layer, every perimeter path, then the infill.
// Layers without paths are skipped.
func (e *Emitter) Layer(l *slicer.Layer, seq surface.Sequence) {
	if len(l.Paths) == 0 {
		return
	}

	e.printf("G0 Z%.3f F%.0f ; layer %v\n", l.Z, e.s.TravelSpeed*60, l.Index)
	if e.printed == 0 {
		e.skirt(l.Paths)
	}
	e.printed++

	for _, p := range l.Paths {
		e.Path(p)
	}

	var fill []geom.Segment
	bounds := l.Bounds()
	if seq.Shell() {
		fill = infill.Solid(bounds, l.Paths, e.s.NozzleDiameter)
	} else {
		fill = infill.Fill(bounds, e.s.InfillPattern, e.s.InfillDensity, l.Paths, e.s.NozzleDiameter)
	}
	for _, s := range fill {
		e.travel(s.Start)
		e.extrude(s.Start, s.End)
	}
}

// Path travels to the first point of p and extrudes around the loop back
// to it.
func (e *Emitter) Path(p geom.Path) {
	if len(p) < 2 {
		return
	}
	e.travel(p[0])
	prev := p[0]
	for _, pt := range p[1:] {
		e.extrude(prev, pt)
		prev = pt
	}
	e.extrude(prev, p[0])
}

func (e *Emitter) skirt(paths []geom.Path) {
	for i := 0; i < e.s.SkirtLoops; i++ {
		d := e.s.SkirtDistance + float64(i)*e.s.NozzleDiameter
		if hull := geom.OutsetHull(paths, d); len(hull) >= 3 {
			e.Path(hull)
		}
	}
}

func (e *Emitter) travel(to mgl64.Vec2) {
	e.printf("G0 X%.3f Y%.3f F%.0f\n", to.X(), to.Y(), e.s.TravelSpeed*60)
}

func (e *Emitter) extrude(from, to mgl64.Vec2) {
	v := e.ext.Advance(to.Sub(from).Len())
	e.printf("G1 X%.3f Y%.3f E%.5f F%.0f\n", to.X(), to.Y(), v, e.s.PrintSpeed*60)
}
