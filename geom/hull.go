package geom

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ConvexHull returns the convex hull of pts in counter-clockwise order
// using a Graham scan. It returns nil when fewer than 3 non-collinear
// points are supplied.
func ConvexHull(pts []mgl64.Vec2) Path {
	if len(pts) < 3 {
		return nil
	}
	sorted := sortByAngle(pts)

	var stack []mgl64.Vec2
	for _, pt := range sorted {
		for len(stack) >= 2 && ccw(stack[len(stack)-2], stack[len(stack)-1], pt) <= Epsilon*Epsilon {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, pt)
	}
	if len(stack) < 3 {
		return nil
	}
	return Path(stack)
}

// OutsetHull returns the convex hull of every path point pushed outward by
// distance d, sampled in 16 directions. It approximates the outline of the
// paths offset by d and is used for skirt loops.
func OutsetHull(paths []Path, d float64) Path {
	const directions = 16
	var pts []mgl64.Vec2
	for _, p := range paths {
		for _, pt := range p {
			for i := 0; i < directions; i++ {
				angle := 2 * math.Pi * float64(i) / directions
				pts = append(pts, pt.Add(mgl64.Vec2{d * math.Cos(angle), d * math.Sin(angle)}))
			}
		}
	}
	return ConvexHull(pts)
}

func ccw(p1, p2, p3 mgl64.Vec2) float64 {
	return (p2.X()-p1.X())*(p3.Y()-p1.Y()) - (p2.Y()-p1.Y())*(p3.X()-p1.X())
}

// sortByAngle orders the points by polar angle around the lowest
// (then left-most) point, which comes first.
func sortByAngle(pts []mgl64.Vec2) []mgl64.Vec2 {
	start := 0
	for i, pt := range pts {
		if pt.Y() < pts[start].Y() || (pt.Y() == pts[start].Y() && pt.X() < pts[start].X()) {
			start = i
		}
	}
	pivot := pts[start]

	result := make([]mgl64.Vec2, 0, len(pts))
	result = append(result, pivot)
	for i, pt := range pts {
		if i != start {
			result = append(result, pt)
		}
	}
	rest := result[1:]
	sort.SliceStable(rest, func(a, b int) bool {
		da, db := rest[a].Sub(pivot), rest[b].Sub(pivot)
		aa, ab := math.Atan2(da.Y(), da.X()), math.Atan2(db.Y(), db.X())
		if aa == ab {
			return da.Len() < db.Len()
		}
		return aa < ab
	})
	return result
}
