package surface

import (
	"fmt"
	"math"
	"testing"

	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/slicer"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/go-gl/mathgl/mgl64"
)

func classifyMesh(t *testing.T, m *stl.Mesh, n int) ([]slicer.Layer, []Sequence) {
	t.Helper()
	s := config.Default()
	s.TopBottomLayers = n
	layers, err := slicer.SliceMesh(m, s.LayerHeight)
	if err != nil {
		t.Fatalf("SliceMesh: %v", err)
	}
	seqs := Classify(m, layers, s)
	if len(seqs) != len(layers) {
		t.Fatalf("Classify = %v sequences, want %v", len(seqs), len(layers))
	}
	return layers, seqs
}

func TestClassifyCube(t *testing.T) {
	m := stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 20, 20})
	_, seqs := classifyMesh(t, m, 3)
	last := len(seqs) - 1

	for i, s := range seqs {
		wantBottom := i <= 2
		wantTop := i >= last-2
		if s.IsBottom != wantBottom || s.IsTop != wantTop {
			t.Errorf("layer %v = %+v, want {IsBottom:%v IsTop:%v}", i, s, wantBottom, wantTop)
		}
	}
}

func TestClassifyNoShells(t *testing.T) {
	m := stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10})
	_, seqs := classifyMesh(t, m, 0)
	for i, s := range seqs {
		if s.Shell() {
			t.Errorf("layer %v = %+v, want no shell", i, s)
		}
	}
}

func TestClassifyOverhang(t *testing.T) {
	// A thin column carrying a wide slab: the slab's underside is an
	// interior downward facing surface at z=10.
	m := stl.Merge(
		stl.NewBox(mgl64.Vec3{4, 4, 0}, mgl64.Vec3{6, 6, 10}),
		stl.NewBox(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{10, 10, 14}),
	)
	layers, seqs := classifyMesh(t, m, 3)

	tests := []struct {
		z          float64
		wantBottom bool
	}{
		{z: 5},
		{z: 9.8},
		{z: 10, wantBottom: true},
		{z: 10.2, wantBottom: true},
		{z: 10.4, wantBottom: true},
		{z: 10.6, wantBottom: true},
		{z: 10.8},
		{z: 12},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: z=%v", i, tt.z), func(t *testing.T) {
			idx := -1
			for j, l := range layers {
				if math.Abs(l.Z-tt.z) < 1e-6 {
					idx = j
				}
			}
			if idx < 0 {
				t.Fatalf("no layer at z=%v", tt.z)
			}
			if got := seqs[idx].IsBottom; got != tt.wantBottom {
				t.Errorf("layer z=%v IsBottom = %v, want %v", tt.z, got, tt.wantBottom)
			}
		})
	}
}

func TestClassifyPlateau(t *testing.T) {
	// A short box beside a tall one: the short top is an internal plateau
	// of the combined mesh.
	m := stl.Merge(
		stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}),
		stl.NewBox(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{30, 10, 20}),
	)
	layers, seqs := classifyMesh(t, m, 3)

	tests := []struct {
		z       float64
		wantTop bool
	}{
		{z: 5},
		{z: 9.4, wantTop: true},
		{z: 9.8, wantTop: true},
		{z: 10, wantTop: true},
		{z: 10.4},
		{z: 15},
		{z: 20, wantTop: true},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: z=%v", i, tt.z), func(t *testing.T) {
			idx := -1
			for j, l := range layers {
				if math.Abs(l.Z-tt.z) < 1e-6 {
					idx = j
				}
			}
			if idx < 0 {
				t.Fatalf("no layer at z=%v", tt.z)
			}
			if got := seqs[idx].IsTop; got != tt.wantTop {
				t.Errorf("layer %v (z=%v) IsTop = %v, want %v", idx, tt.z, got, tt.wantTop)
			}
		})
	}
}

func TestGeometryChange(t *testing.T) {
	layerOf := func(length float64) slicer.Layer {
		if length == 0 {
			return slicer.Layer{}
		}
		return slicer.Layer{Segments: []geom.Segment{{End: mgl64.Vec2{length, 0}}}}
	}

	tests := []struct {
		name    string
		lengths []float64
		n       int
		wantTop []int
	}{
		{
			name:    "constant",
			lengths: []float64{10, 10, 10, 10, 10},
			n:       2,
		},
		{
			name:    "ends partway up",
			lengths: []float64{10, 10, 10, 10, 10, 10, 10, 0, 0, 0},
			n:       2,
			wantTop: []int{3, 4, 5, 6},
		},
		{
			name:    "small taper ignored",
			lengths: []float64{10, 9.5, 9.1, 8.7, 8.3},
			n:       1,
		},
		{
			name:    "large step",
			lengths: []float64{10, 10, 10, 10, 5, 5, 5},
			n:       1,
			wantTop: []int{2, 3},
		},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %v", i, tt.name), func(t *testing.T) {
			layers := make([]slicer.Layer, len(tt.lengths))
			for j, l := range tt.lengths {
				layers[j] = layerOf(l)
			}
			seqs := make([]Sequence, len(layers))
			geometryChange(seqs, layers, tt.n)

			want := map[int]bool{}
			for _, j := range tt.wantTop {
				want[j] = true
			}
			for j, s := range seqs {
				if s.IsTop != want[j] {
					t.Errorf("layer %v IsTop = %v, want %v", j, s.IsTop, want[j])
				}
				if s.IsBottom {
					t.Errorf("layer %v IsBottom = true", j)
				}
			}
		})
	}
}

func TestSurfaces(t *testing.T) {
	m := stl.Merge(
		stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}),
		stl.NewBox(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{30, 10, 20}),
		stl.NewBox(mgl64.Vec3{40, 0, 0}, mgl64.Vec3{50, 10, 10.1}),
	)
	up, down := Surfaces(m, 0.2)

	wantUp := []float64{10.05, 20}
	if len(up) != len(wantUp) {
		t.Fatalf("up = %v, want %v", up, wantUp)
	}
	for i := range wantUp {
		if math.Abs(up[i]-wantUp[i]) > 1e-9 {
			t.Errorf("up[%v] = %v, want %v", i, up[i], wantUp[i])
		}
	}
	if len(down) != 1 || math.Abs(down[0]) > 1e-9 {
		t.Errorf("down = %v, want [0]", down)
	}
}
