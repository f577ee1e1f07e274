// Package slicer cuts a triangle mesh with horizontal planes, one per
// layer height, producing the unordered segments of each layer.
package slicer

import (
	"errors"
	"fmt"
	"math"

	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/go-gl/mathgl/mgl64"
)

// Layer represents the geometry of one horizontal plane.
//
// A layer with no segments is valid: the plane missed the mesh. It keeps
// its index so it lines up with the layers of other solids.
type Layer struct {
	Index    int
	Z        float64
	Segments []geom.Segment

	// Paths are the closed loops stitched from Segments.
	// They are filled in by the perimeter stage.
	Paths []geom.Path
}

// Empty reports whether the plane did not intersect the mesh.
func (l *Layer) Empty() bool { return len(l.Segments) == 0 }

// SegmentLength returns the total 2D length of the layer's segments.
func (l *Layer) SegmentLength() float64 {
	var total float64
	for _, s := range l.Segments {
		total += s.Len()
	}
	return total
}

// Bounds returns the bounds of the layer's paths.
func (l *Layer) Bounds() geom.Bounds { return geom.PathsBounds(l.Paths) }

// SliceAtHeight intersects every triangle of m with the plane at height z.
//
// An edge crosses the plane when min(za,zb) < z <= max(za,zb). A triangle
// yields a segment only when exactly two of its edges cross; vertices
// lying exactly on the plane are not treated specially.
func SliceAtHeight(m *stl.Mesh, z float64) []geom.Segment {
	var segs []geom.Segment
	for _, t := range m.Triangles {
		var pts [3]mgl64.Vec2
		var n int
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			pt, ok := crossing(a, b, z)
			if !ok {
				continue
			}
			if n < 3 {
				pts[n] = pt
			}
			n++
		}
		if n != 2 {
			continue
		}
		s := geom.Segment{Start: pts[0], End: pts[1]}
		if s.Len() < geom.Epsilon {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

func crossing(a, b mgl64.Vec3, z float64) (mgl64.Vec2, bool) {
	za, zb := a.Z(), b.Z()
	if !(math.Min(za, zb) < z && z <= math.Max(za, zb)) {
		return mgl64.Vec2{}, false
	}
	dz := zb - za
	if math.Abs(dz) < geom.Epsilon*geom.Epsilon {
		return mgl64.Vec2{}, false
	}
	t := (z - za) / dz
	return mgl64.Vec2{
		a.X() + t*(b.X()-a.X()),
		a.Y() + t*(b.Y()-a.Y()),
	}, true
}

// NumLayers returns the number of layers a mesh of the given height
// produces: ceil(height / layerHeight).
func NumLayers(height, layerHeight float64) int {
	return int(math.Ceil(height/layerHeight - geom.Epsilon))
}

// SliceMesh slices m once per layer height, from min.z+layerHeight up to
// max.z. The last plane is clamped to max.z.
func SliceMesh(m *stl.Mesh, layerHeight float64) ([]Layer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if !(layerHeight > 0) {
		return nil, fmt.Errorf("layer height must be positive, got %v", layerHeight)
	}

	box := m.BoundingBox()
	n := NumLayers(box.Size.Z(), layerHeight)
	if n <= 0 {
		return nil, errors.New("mesh is thinner than one layer")
	}

	layers := make([]Layer, n)
	for i := range layers {
		z := math.Min(box.Min.Z()+float64(i+1)*layerHeight, box.Max.Z())
		layers[i] = Layer{Index: i, Z: z, Segments: SliceAtHeight(m, z)}
	}
	return layers, nil
}

// SliceOnGrid slices m at the heights of grid that fall inside m's Z
// range, keeping each grid layer's Index. It lets a solid that shares a
// build plate be sliced on the plate's layer heights rather than its own.
func SliceOnGrid(m *stl.Mesh, grid []Layer) ([]Layer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	box := m.BoundingBox()
	var layers []Layer
	for _, g := range grid {
		if g.Z <= box.Min.Z()+geom.Epsilon || g.Z > box.Max.Z()+geom.Epsilon {
			continue
		}
		z := math.Min(g.Z, box.Max.Z())
		layers = append(layers, Layer{Index: g.Index, Z: g.Z, Segments: SliceAtHeight(m, z)})
	}
	return layers, nil
}
