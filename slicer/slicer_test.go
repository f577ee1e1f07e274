package slicer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/go-gl/mathgl/mgl64"
)

func cube(x, y, size, height float64) *stl.Mesh {
	return stl.NewBox(mgl64.Vec3{x, y, 0}, mgl64.Vec3{x + size, y + size, height})
}

func TestSliceAtHeight(t *testing.T) {
	m := cube(0, 0, 20, 20)

	tests := []struct {
		name     string
		z        float64
		wantSegs int
		wantLen  float64
	}{
		{name: "middle", z: 10, wantSegs: 8, wantLen: 80},
		{name: "top face", z: 20, wantSegs: 4, wantLen: 80},
		{name: "bottom face", z: 0},
		{name: "above", z: 25},
		{name: "below", z: -1},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %v", i, tt.name), func(t *testing.T) {
			segs := SliceAtHeight(m, tt.z)
			if len(segs) != tt.wantSegs {
				t.Fatalf("SliceAtHeight(%v) = %v segments, want %v", tt.z, len(segs), tt.wantSegs)
			}
			l := Layer{Segments: segs}
			if got := l.SegmentLength(); math.Abs(got-tt.wantLen) > geom.Epsilon {
				t.Errorf("SegmentLength = %v, want %v", got, tt.wantLen)
			}
			for _, s := range segs {
				for _, pt := range []mgl64.Vec2{s.Start, s.End} {
					if pt.X() < -geom.Epsilon || pt.X() > 20+geom.Epsilon || pt.Y() < -geom.Epsilon || pt.Y() > 20+geom.Epsilon {
						t.Errorf("segment point %v outside the cube", pt)
					}
				}
			}
		})
	}
}

func TestSliceAtHeightSkipsDegenerate(t *testing.T) {
	m := &stl.Mesh{Triangles: []stl.Triangle{
		{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		{{0, 0, 0}, {0, 0, 0}, {0, 0, 2}}, // zero-area sliver
	}}
	if segs := SliceAtHeight(m, 1); len(segs) != 0 {
		t.Errorf("SliceAtHeight = %v, want no segments", segs)
	}
}

func TestSliceMeshHeights(t *testing.T) {
	tests := []struct {
		name        string
		height      float64
		layerHeight float64
		want        int
	}{
		{name: "exact multiple", height: 20, layerHeight: 0.2, want: 100},
		{name: "remainder", height: 10.1, layerHeight: 0.2, want: 51},
		{name: "thin", height: 0.1, layerHeight: 0.2, want: 1},
		{name: "coarse", height: 7, layerHeight: 2, want: 4},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %v", i, tt.name), func(t *testing.T) {
			m := cube(0, 0, 10, tt.height)
			layers, err := SliceMesh(m, tt.layerHeight)
			if err != nil {
				t.Fatalf("SliceMesh: %v", err)
			}
			if len(layers) != tt.want {
				t.Fatalf("SliceMesh = %v layers, want %v", len(layers), tt.want)
			}
			box := m.BoundingBox()
			for i, l := range layers {
				if l.Index != i {
					t.Errorf("layers[%v].Index = %v", i, l.Index)
				}
				if l.Z > box.Max.Z() {
					t.Errorf("layers[%v].Z = %v above max %v", i, l.Z, box.Max.Z())
				}
				if i > 0 && l.Z <= layers[i-1].Z {
					t.Errorf("layers[%v].Z = %v not increasing", i, l.Z)
				}
				if l.Empty() {
					t.Errorf("layers[%v] is empty", i)
				}
			}
			if got := layers[len(layers)-1].Z; got != box.Max.Z() {
				t.Errorf("last layer Z = %v, want %v", got, box.Max.Z())
			}
			if tt.height >= tt.layerHeight && layers[0].Z < box.Min.Z()+tt.layerHeight-geom.Epsilon {
				t.Errorf("first layer Z = %v below min+layerHeight", layers[0].Z)
			}
		})
	}
}

func TestSliceMeshKeepsEmptyLayers(t *testing.T) {
	low := cube(0, 0, 10, 2)
	high := stl.NewBox(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{10, 10, 10})
	layers, err := SliceMesh(stl.Merge(low, high), 1)
	if err != nil {
		t.Fatalf("SliceMesh: %v", err)
	}
	if len(layers) != 10 {
		t.Fatalf("SliceMesh = %v layers, want 10", len(layers))
	}
	for i, l := range layers {
		wantEmpty := i >= 2 && i <= 4
		if l.Empty() != wantEmpty {
			t.Errorf("layers[%v] (z=%v) Empty = %v, want %v", i, l.Z, l.Empty(), wantEmpty)
		}
	}
}

func TestSliceOnGrid(t *testing.T) {
	grid, err := SliceMesh(cube(0, 0, 10, 20), 0.2)
	if err != nil {
		t.Fatalf("SliceMesh: %v", err)
	}

	tests := []struct {
		name      string
		m         *stl.Mesh
		wantN     int
		wantFirst float64
		wantLast  float64
	}{
		{name: "whole layers", m: cube(20, 0, 10, 10), wantN: 50, wantFirst: 0.2, wantLast: 10},
		{name: "partial top layer", m: cube(20, 0, 10, 10.15), wantN: 50, wantFirst: 0.2, wantLast: 10},
		{name: "floating", m: stl.NewBox(mgl64.Vec3{20, 0, 5}, mgl64.Vec3{30, 10, 6.1}), wantN: 5, wantFirst: 5.2, wantLast: 6},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %v", i, tt.name), func(t *testing.T) {
			layers, err := SliceOnGrid(tt.m, grid)
			if err != nil {
				t.Fatalf("SliceOnGrid: %v", err)
			}
			if len(layers) != tt.wantN {
				t.Fatalf("SliceOnGrid = %v layers, want %v", len(layers), tt.wantN)
			}
			first, last := layers[0], layers[len(layers)-1]
			if math.Abs(first.Z-tt.wantFirst) > geom.Epsilon || math.Abs(last.Z-tt.wantLast) > geom.Epsilon {
				t.Errorf("Z range = [%v, %v], want [%v, %v]", first.Z, last.Z, tt.wantFirst, tt.wantLast)
			}
			for _, l := range layers {
				if g := grid[l.Index]; g.Z != l.Z {
					t.Errorf("layer %v: Z = %v, grid Z = %v", l.Index, l.Z, g.Z)
				}
				if l.Empty() {
					t.Errorf("layer %v (z=%v) is empty", l.Index, l.Z)
				}
			}
		})
	}
}

func TestSliceMeshErrors(t *testing.T) {
	if _, err := SliceMesh(&stl.Mesh{}, 0.2); !errors.Is(err, stl.ErrEmptyMesh) {
		t.Errorf("empty mesh: err = %v, want ErrEmptyMesh", err)
	}
	if _, err := SliceMesh(cube(0, 0, 1, 1), 0); err == nil {
		t.Error("zero layer height: expected error")
	}
}

type counter struct {
	indices []int
	failAt  int
}

func (c *counter) ProcessLayer(l *Layer) error {
	if l.Index == c.failAt {
		return errors.New("boom")
	}
	c.indices = append(c.indices, l.Index)
	return nil
}

func TestWalk(t *testing.T) {
	layers := []Layer{{Index: 0}, {Index: 1}, {Index: 2}}
	c := &counter{failAt: -1}
	if err := Walk(layers, c); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(c.indices) != 3 {
		t.Errorf("Walk visited %v", c.indices)
	}

	c = &counter{failAt: 1}
	if err := Walk(layers, c); err == nil || len(c.indices) != 1 {
		t.Errorf("Walk = %v after %v, want error after one layer", err, c.indices)
	}
}
