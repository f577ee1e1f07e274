// Package geom provides the 2D primitives shared by the slicing stages:
// segments cut from triangles, closed paths stitched from them, and the
// even-odd containment rule used to tell material from holes.
package geom

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon guards divisions by near-zero values and rejects degenerate
// (zero-length) geometry.
const Epsilon = 0.0001

// Segment represents a 2D line, typically produced by intersecting one
// triangle with one horizontal plane.
type Segment struct {
	Start, End mgl64.Vec2
}

// Len returns the length of the segment.
func (s Segment) Len() float64 { return s.End.Sub(s.Start).Len() }

// Reverse returns the segment traversed from End to Start.
func (s Segment) Reverse() Segment { return Segment{Start: s.End, End: s.Start} }

// Midpoint returns the point halfway between Start and End.
func (s Segment) Midpoint() mgl64.Vec2 { return s.Start.Add(s.End).Mul(0.5) }

// Transpose swaps the X and Y coordinates of both endpoints.
func (s Segment) Transpose() Segment {
	return Segment{Start: transpose(s.Start), End: transpose(s.End)}
}

// Path represents a closed polygon loop bounding solid material.
// The last point implicitly connects back to the first.
type Path []mgl64.Vec2

// Len returns the perimeter of the path including the closing edge.
func (p Path) Len() float64 {
	if len(p) < 2 {
		return 0
	}
	var total float64
	for i, pt := range p {
		total += p[(i+1)%len(p)].Sub(pt).Len()
	}
	return total
}

// Area returns the signed area of the path (positive when counter-clockwise).
func (p Path) Area() float64 {
	var area float64
	for i, a := range p {
		b := p[(i+1)%len(p)]
		area += a.X()*b.Y() - b.X()*a.Y()
	}
	return area / 2
}

// Contains reports whether pt lies inside the path. It uses the same
// half-open edge rule as Crossings, so points level with a vertex are
// counted once.
func (p Path) Contains(pt mgl64.Vec2) bool {
	var inside bool
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[j], p[i]
		if (a.Y() >= pt.Y()) == (b.Y() >= pt.Y()) {
			continue
		}
		x := a.X() + (pt.Y()-a.Y())/(b.Y()-a.Y())*(b.X()-a.X())
		if pt.X() < x {
			inside = !inside
		}
	}
	return inside
}

// Transpose returns a copy of the path with X and Y swapped.
func (p Path) Transpose() Path {
	result := make(Path, len(p))
	for i, pt := range p {
		result[i] = transpose(pt)
	}
	return result
}

// ContainsEvenOdd reports whether pt is inside an odd number of paths.
// Odd means solid material, even means the point sits in a hole (or
// outside everything).
func ContainsEvenOdd(paths []Path, pt mgl64.Vec2) bool {
	var count int
	for _, p := range paths {
		if p.Contains(pt) {
			count++
		}
	}
	return count%2 == 1
}

// Crossings returns the sorted X coordinates where the horizontal line
// at height y crosses the edges of all paths. An edge counts when one
// endpoint is strictly below y and the other is at or above it.
func Crossings(paths []Path, y float64) []float64 {
	var xs []float64
	for _, p := range paths {
		for i, a := range p {
			b := p[(i+1)%len(p)]
			if (a.Y() < y && b.Y() >= y) || (b.Y() < y && a.Y() >= y) {
				t := (y - a.Y()) / (b.Y() - a.Y())
				xs = append(xs, a.X()+t*(b.X()-a.X()))
			}
		}
	}
	sort.Float64s(xs)
	return xs
}

func transpose(v mgl64.Vec2) mgl64.Vec2 { return mgl64.Vec2{v[1], v[0]} }
