// Package infill generates scanline fill segments clipped to the closed
// paths of a layer. Holes are excluded with the even-odd rule, so paths
// need no outer/inner tagging.
package infill

import (
	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SolidSpacingFactor times the nozzle diameter is the line spacing of
	// solid (100%) fill. It is tighter than the nozzle so lines overlap.
	SolidSpacingFactor = 0.875
	// MinSpacingFactor times the nozzle diameter is the sparse spacing
	// approached as density nears 100%.
	MinSpacingFactor = 2.5
	// MaxSpacingFactor times the nozzle diameter is the sparse spacing at
	// 0% density.
	MaxSpacingFactor = 12.5

	// MinSegmentLength is the shortest fill segment worth extruding.
	MinSegmentLength = 0.1
)

// Spacing returns the distance between neighboring scan lines for the
// given density percentage. It returns 0 when density <= 0, meaning no
// infill at all.
func Spacing(density, nozzle float64) float64 {
	switch {
	case density <= 0:
		return 0
	case density >= 100:
		return nozzle * SolidSpacingFactor
	}
	lo, hi := MinSpacingFactor*nozzle, MaxSpacingFactor*nozzle
	return hi + (lo-hi)*density/100
}

// Fill returns sparse infill for one layer using every direction of the
// pattern.
func Fill(bounds geom.Bounds, pattern Pattern, density float64, paths []geom.Path, nozzle float64) []geom.Segment {
	spacing := Spacing(density, nozzle)
	if spacing <= 0 {
		return nil
	}
	var segs []geom.Segment
	for _, dir := range pattern.Angles() {
		segs = append(segs, Scan(bounds, spacing, paths, dir)...)
	}
	return segs
}

// Solid returns 100% infill in both directions, used for shell layers.
func Solid(bounds geom.Bounds, paths []geom.Path, nozzle float64) []geom.Segment {
	return Fill(bounds, Grid, 100, paths, nozzle)
}

// Scan covers bounds with scan lines in direction dir, spacing apart,
// starting half a spacing in from the edge. Consecutive lines that produce
// output alternate their traversal direction.
func Scan(bounds geom.Bounds, spacing float64, paths []geom.Path, dir Direction) []geom.Segment {
	if bounds.Empty() || len(paths) == 0 || !(spacing > 0) {
		return nil
	}

	transposed := dir == AlongY
	if transposed {
		bounds = bounds.Transpose()
		tp := make([]geom.Path, len(paths))
		for i, p := range paths {
			tp[i] = p.Transpose()
		}
		paths = tp
	}

	var segs []geom.Segment
	var reverse bool
	for i := 0; ; i++ {
		y := bounds.Min.Y() + spacing*(float64(i)+0.5)
		if y > bounds.Max.Y() {
			break
		}
		line := ScanLine(paths, y)
		if len(line) == 0 {
			continue
		}
		if reverse {
			for l, r := 0, len(line)-1; l < r; l, r = l+1, r-1 {
				line[l], line[r] = line[r], line[l]
			}
			for j := range line {
				line[j] = line[j].Reverse()
			}
		}
		reverse = !reverse
		segs = append(segs, line...)
	}

	if transposed {
		for i := range segs {
			segs[i] = segs[i].Transpose()
		}
	}
	return segs
}

// ScanLine intersects the horizontal line at height y with every edge of
// every path and returns the pieces lying in solid material, left to
// right. Each interval between consecutive crossings is kept when its
// midpoint is inside an odd number of paths and it is at least
// MinSegmentLength long.
func ScanLine(paths []geom.Path, y float64) []geom.Segment {
	xs := geom.Crossings(paths, y)
	var segs []geom.Segment
	for i := 0; i+1 < len(xs); i++ {
		s := geom.Segment{Start: mgl64.Vec2{xs[i], y}, End: mgl64.Vec2{xs[i+1], y}}
		if s.Len() < MinSegmentLength {
			continue
		}
		if !geom.ContainsEvenOdd(paths, s.Midpoint()) {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}
