package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned 2D bounding box.
type Bounds struct {
	Min, Max mgl64.Vec2
}

// EmptyBounds returns bounds that contain nothing; extending them with a
// point yields a box around that point.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: mgl64.Vec2{inf, inf},
		Max: mgl64.Vec2{-inf, -inf},
	}
}

// PathsBounds returns the bounds of every point of every path.
func PathsBounds(paths []Path) Bounds {
	b := EmptyBounds()
	for _, p := range paths {
		for _, pt := range p {
			b = b.Extend(pt)
		}
	}
	return b
}

// Empty reports whether the bounds contain no points.
func (b Bounds) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y()
}

// Extend returns the bounds grown to include pt.
func (b Bounds) Extend(pt mgl64.Vec2) Bounds {
	return Bounds{
		Min: mgl64.Vec2{math.Min(b.Min.X(), pt.X()), math.Min(b.Min.Y(), pt.Y())},
		Max: mgl64.Vec2{math.Max(b.Max.X(), pt.X()), math.Max(b.Max.Y(), pt.Y())},
	}
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Size returns the width and height of the bounds.
func (b Bounds) Size() mgl64.Vec2 {
	if b.Empty() {
		return mgl64.Vec2{}
	}
	return b.Max.Sub(b.Min)
}

// Transpose swaps the X and Y extents.
func (b Bounds) Transpose() Bounds {
	return Bounds{Min: transpose(b.Min), Max: transpose(b.Max)}
}
