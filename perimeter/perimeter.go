// Package perimeter stitches the unordered segments of a layer into
// closed, ordered polygon loops.
package perimeter

import (
	"math"

	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// StitchTolerance is the largest distance between two segment endpoints
// that are still considered the same point.
const StitchTolerance = 0.01

// Trace chains segments into closed paths.
//
// It greedily starts a path from the next unused segment, then repeatedly
// appends the first unused segment with an endpoint within StitchTolerance
// of the path's last point. Matching is first-match, not nearest-match, and
// costs O(n²) per layer. A path ends when it returns to its first point or
// nothing connects. Paths that end up with fewer than 3 points are dropped.
func Trace(segments []geom.Segment) []geom.Path {
	used := make([]bool, len(segments))
	var paths []geom.Path

	for start := range segments {
		if used[start] {
			continue
		}
		used[start] = true
		path := geom.Path{segments[start].Start, segments[start].End}

		for {
			last := path[len(path)-1]
			next, ok := match(segments, used, last)
			if !ok {
				break
			}
			used[next.index] = true
			if near(next.pt, path[0]) {
				break // closed
			}
			path = append(path, next.pt)
		}

		if path = simplify(path); len(path) >= 3 {
			paths = append(paths, path)
		}
	}
	return paths
}

type candidate struct {
	index int
	pt    mgl64.Vec2 // the endpoint opposite the matched one
}

func match(segments []geom.Segment, used []bool, pt mgl64.Vec2) (candidate, bool) {
	for i, s := range segments {
		if used[i] {
			continue
		}
		if near(s.Start, pt) {
			return candidate{index: i, pt: s.End}, true
		}
		if near(s.End, pt) {
			return candidate{index: i, pt: s.Start}, true
		}
	}
	return candidate{}, false
}

func near(a, b mgl64.Vec2) bool { return a.Sub(b).Len() <= StitchTolerance }

// simplify removes repeated points and points lying on the straight line
// between their neighbors, treating the path as closed.
func simplify(path geom.Path) geom.Path {
	for changed := true; changed && len(path) >= 3; {
		changed = false
		for i := 0; i < len(path) && len(path) >= 3; i++ {
			prev := path[(i+len(path)-1)%len(path)]
			pt := path[i]
			next := path[(i+1)%len(path)]
			if near(prev, pt) || collinear(prev, pt, next) {
				path = append(path[:i], path[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return path
}

// collinear reports whether pt lies within geom.Epsilon of the segment
// from prev to next, between them.
func collinear(prev, pt, next mgl64.Vec2) bool {
	d := next.Sub(prev)
	l := d.Len()
	if l < geom.Epsilon {
		return false
	}
	v := pt.Sub(prev)
	dist := math.Abs(d.X()*v.Y()-d.Y()*v.X()) / l
	along := d.Dot(v) / l
	return dist < geom.Epsilon && along > 0 && along < l
}
