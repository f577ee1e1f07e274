// Package surface decides which layers are shells (top or bottom skins)
// that need solid fill instead of sparse infill.
package surface

import (
	"math"
	"sort"

	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/slicer"
	"github.com/gmlewis/fdm-slicer/stl"
)

const (
	// ShrinkRatio is the fraction of a layer's segment length below which
	// a following layer counts as a geometry change (a drop of over 10%).
	ShrinkRatio = 0.9
	// NormalThreshold is the smallest |normal.z| of a triangle that is
	// part of a horizontal surface.
	NormalThreshold = 0.5
)

// Sequence is the classification of one layer.
type Sequence struct {
	IsBottom bool
	IsTop    bool
}

// Shell reports whether the layer needs solid fill.
func (s Sequence) Shell() bool { return s.IsBottom || s.IsTop }

// Classify returns one Sequence per layer, the logical OR of three rules:
//
//   - the first and last TopBottomLayers layers are shells;
//   - a layer followed, within TopBottomLayers+1 layers, by one whose
//     segment length shrinks by more than 10% (or to zero) is a top, as
//     are the TopBottomLayers-1 layers below it;
//   - layers close below an upward facing horizontal surface are tops and
//     layers close above a downward facing one are bottoms.
func Classify(m *stl.Mesh, layers []slicer.Layer, s config.Settings) []Sequence {
	seqs := make([]Sequence, len(layers))
	n := s.TopBottomLayers
	if n <= 0 || len(layers) == 0 {
		return seqs
	}

	positional(seqs, n)
	geometryChange(seqs, layers, n)
	if m != nil && len(m.Triangles) > 0 {
		normalSurfaces(seqs, m, layers, n, s.LayerHeight)
	}
	return seqs
}

func positional(seqs []Sequence, n int) {
	for i := 0; i < n && i < len(seqs); i++ {
		seqs[i].IsBottom = true
		seqs[len(seqs)-1-i].IsTop = true
	}
}

func geometryChange(seqs []Sequence, layers []slicer.Layer, n int) {
	lengths := make([]float64, len(layers))
	for i := range layers {
		lengths[i] = layers[i].SegmentLength()
	}

	for i, l := range lengths {
		if l <= 0 {
			continue
		}
		if !shrinks(lengths, i, n+1) {
			continue
		}
		for j := i; j > i-n && j >= 0; j-- {
			seqs[j].IsTop = true
		}
	}
}

func shrinks(lengths []float64, i, window int) bool {
	for j := i + 1; j <= i+window && j < len(lengths); j++ {
		if lengths[j] == 0 || lengths[j] < ShrinkRatio*lengths[i] {
			return true
		}
	}
	return false
}

func normalSurfaces(seqs []Sequence, m *stl.Mesh, layers []slicer.Layer, n int, layerHeight float64) {
	up, down := Surfaces(m, layerHeight)
	box := m.BoundingBox()
	window := float64(n+1)*layerHeight - geom.Epsilon

	// Surfaces at the very bottom or top of the mesh are left to the
	// positional rule.
	interior := func(z float64) bool {
		return z-box.Min.Z() > layerHeight && box.Max.Z()-z > layerHeight
	}

	for _, h := range up {
		if !interior(h) {
			continue
		}
		for i := range layers {
			if d := h - layers[i].Z; d >= -geom.Epsilon && d < window {
				seqs[i].IsTop = true
			}
		}
	}
	for _, h := range down {
		if !interior(h) {
			continue
		}
		for i := range layers {
			if d := layers[i].Z - h; d >= -geom.Epsilon && d < window {
				seqs[i].IsBottom = true
			}
		}
	}
}

// Surfaces returns the heights of the mesh's upward and downward facing
// horizontal surfaces, in ascending order. A triangle belongs to one when
// |normal.z| > NormalThreshold; its height is the mean Z of its vertices.
// Heights within layerHeight of each other are merged into their mean.
func Surfaces(m *stl.Mesh, layerHeight float64) (up, down []float64) {
	for _, t := range m.Triangles {
		nz := t.Normal().Z()
		switch {
		case nz > NormalThreshold:
			up = append(up, t.MeanZ())
		case nz < -NormalThreshold:
			down = append(down, t.MeanZ())
		}
	}
	return coalesce(up, layerHeight), coalesce(down, layerHeight)
}

func coalesce(heights []float64, tol float64) []float64 {
	if len(heights) == 0 {
		return nil
	}
	sort.Float64s(heights)

	var result []float64
	sum, count := heights[0], 1
	for i := 1; i < len(heights); i++ {
		if math.Abs(heights[i]-heights[i-1]) <= tol {
			sum += heights[i]
			count++
			continue
		}
		result = append(result, sum/float64(count))
		sum, count = heights[i], 1
	}
	return append(result, sum/float64(count))
}
