package stl

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrEmptyMesh is returned when a mesh has no triangles or its bounding
// box has no volume. Such a mesh cannot be sliced.
var ErrEmptyMesh = errors.New("empty mesh")

// Triangle represents three vertices of a mesh facet.
type Triangle [3]mgl64.Vec3

// Normal returns the unit normal following the right-hand rule on the
// vertex order. Degenerate triangles return the zero vector.
func (t Triangle) Normal() mgl64.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if n.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// MeanZ returns the average height of the three vertices.
func (t Triangle) MeanZ() float64 {
	return (t[0].Z() + t[1].Z() + t[2].Z()) / 3
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max, Size mgl64.Vec3
}

// Mesh is an ingested triangle mesh. It is never mutated after creation.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// BoundingBox scans every vertex once and returns the componentwise
// min/max. The result is meaningless for an empty mesh; guard with Validate.
func (m *Mesh) BoundingBox() Box {
	inf := math.Inf(1)
	min := mgl64.Vec3{inf, inf, inf}
	max := mgl64.Vec3{-inf, -inf, -inf}
	for _, t := range m.Triangles {
		for _, v := range t {
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], v[i])
				max[i] = math.Max(max[i], v[i])
			}
		}
	}
	return Box{Min: min, Max: max, Size: max.Sub(min)}
}

// Validate returns ErrEmptyMesh when the mesh has no triangles or its
// bounding box is flat along any axis.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Triangles) == 0 {
		return ErrEmptyMesh
	}
	b := m.BoundingBox()
	for i := 0; i < 3; i++ {
		if !(b.Size[i] > 0) {
			return ErrEmptyMesh
		}
	}
	return nil
}

// Merge returns a new mesh holding the triangles of all meshes in order.
func Merge(meshes ...*Mesh) *Mesh {
	var n int
	for _, m := range meshes {
		n += len(m.Triangles)
	}
	result := &Mesh{Name: "merged", Triangles: make([]Triangle, 0, n)}
	for _, m := range meshes {
		result.Triangles = append(result.Triangles, m.Triangles...)
	}
	return result
}

// NewBox returns a closed axis-aligned box from min to max as 12
// outward-facing triangles.
func NewBox(min, max mgl64.Vec3) *Mesh {
	corner := func(x, y, z int) mgl64.Vec3 {
		c := min
		if x == 1 {
			c[0] = max[0]
		}
		if y == 1 {
			c[1] = max[1]
		}
		if z == 1 {
			c[2] = max[2]
		}
		return c
	}
	p000, p100, p010, p110 := corner(0, 0, 0), corner(1, 0, 0), corner(0, 1, 0), corner(1, 1, 0)
	p001, p101, p011, p111 := corner(0, 0, 1), corner(1, 0, 1), corner(0, 1, 1), corner(1, 1, 1)

	return &Mesh{
		Name: "box",
		Triangles: []Triangle{
			{p000, p010, p110}, {p000, p110, p100}, // -Z
			{p001, p101, p111}, {p001, p111, p011}, // +Z
			{p000, p100, p101}, {p000, p101, p001}, // -Y
			{p010, p011, p111}, {p010, p111, p110}, // +Y
			{p000, p001, p011}, {p000, p011, p010}, // -X
			{p100, p110, p111}, {p100, p111, p101}, // +X
		},
	}
}
