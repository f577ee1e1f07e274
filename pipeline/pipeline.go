// Package pipeline drives a complete slicing run: mesh to layers, layers
// to perimeters and shell classification, and finally to G-code.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/gcode"
	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/gmlewis/fdm-slicer/perimeter"
	"github.com/gmlewis/fdm-slicer/slicer"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/gmlewis/fdm-slicer/surface"
)

var (
	// ErrSlicingFailed wraps every error returned by Slice and SliceSolids.
	ErrSlicingFailed = errors.New("slicing failed")
	// ErrTooManySegments is returned when a layer exceeds
	// Settings.MaxSegmentsPerLayer.
	ErrTooManySegments = errors.New("too many segments in layer")
)

// Result is the output of a successful run.
type Result struct {
	Layers    []slicer.Layer
	Sequences []surface.Sequence
	Program   string
}

// Slice runs the whole pipeline on one mesh.
func Slice(ctx context.Context, m *stl.Mesh, s config.Settings) (*Result, error) {
	return SliceSolids(ctx, []*stl.Mesh{m}, s)
}

// SliceSolids runs the pipeline on independently placed solids sharing
// one build plate.
//
// The union of all solids is sliced once to produce the printed layers.
// Each solid is then sliced again on those same heights and classified on
// its own, so that the top and bottom of a short solid are found even when
// a taller one continues above it. The per-solid flags are carried over by
// height.
func SliceSolids(ctx context.Context, meshes []*stl.Mesh, s config.Settings) (*Result, error) {
	r, err := sliceSolids(ctx, meshes, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSlicingFailed, err)
	}
	return r, nil
}

func sliceSolids(ctx context.Context, meshes []*stl.Mesh, s config.Settings) (*Result, error) {
	if len(meshes) == 0 {
		return nil, errors.New("no solids to slice")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for i, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("solid #%v (%v): %w", i, m.Name, err)
		}
	}
	log := Logger()

	if len(meshes) == 1 {
		m := meshes[0]
		layers, err := sliceAndTrace(ctx, m, s)
		if err != nil {
			return nil, err
		}
		seqs := surface.Classify(m, layers, s)
		log.Info("classified layers", "solid", m.Name, "shells", countShells(seqs))
		return emit(ctx, layers, seqs, s)
	}

	merged := stl.Merge(meshes...)
	layers, err := sliceAndTrace(ctx, merged, s)
	if err != nil {
		return nil, err
	}

	var solids []Solid
	for _, m := range meshes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		own, err := slicer.SliceOnGrid(m, layers)
		if err != nil {
			return nil, fmt.Errorf("solid %v: %w", m.Name, err)
		}
		if len(own) == 0 {
			log.Warn("solid is thinner than one layer", "solid", m.Name)
			continue
		}
		seqs := surface.Classify(m, own, s)
		log.Info("classified solid", "solid", m.Name, "layers", len(own), "shells", countShells(seqs))
		solids = append(solids, Solid{Layers: own, Sequences: seqs})
	}

	seqs := Reconcile(layers, solids, geom.Epsilon)
	return emit(ctx, layers, seqs, s)
}

func sliceAndTrace(ctx context.Context, m *stl.Mesh, s config.Settings) ([]slicer.Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layers, err := slicer.SliceMesh(m, s.LayerHeight)
	if err != nil {
		return nil, err
	}
	Logger().Info("sliced mesh", "solid", m.Name, "triangles", len(m.Triangles), "layers", len(layers))

	if limit := s.MaxSegmentsPerLayer; limit > 0 {
		for _, l := range layers {
			if n := len(l.Segments); n > limit {
				return nil, fmt.Errorf("%w: layer %v has %v segments (limit %v)", ErrTooManySegments, l.Index, n, limit)
			}
		}
	}

	if err := trace(ctx, layers, s.Workers); err != nil {
		return nil, err
	}
	return layers, nil
}

// trace fills in the Paths of every layer using up to workers goroutines.
// Each layer is written only by the goroutine that traces it.
func trace(ctx context.Context, layers []slicer.Layer, workers int) error {
	if workers < 1 {
		workers = 1
	}
	log := Logger()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				l := &layers[i]
				l.Paths = perimeter.Trace(l.Segments)
				if len(l.Paths) == 0 && !l.Empty() {
					log.Warn("segments did not close into paths", "layer", l.Index, "z", l.Z, "segments", len(l.Segments))
				}
				log.Debug("traced layer", "layer", l.Index, "z", l.Z, "segments", len(l.Segments), "paths", len(l.Paths), "area", area(l.Paths))
			}
		}()
	}

dispatch:
	for i := range layers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

func emit(ctx context.Context, layers []slicer.Layer, seqs []surface.Sequence, s config.Settings) (*Result, error) {
	var buf strings.Builder
	if err := gcode.WriteContext(ctx, &buf, layers, seqs, s); err != nil {
		return nil, err
	}
	Logger().Info("emitted program", "layers", len(layers), "bytes", buf.Len())

	return &Result{Layers: layers, Sequences: seqs, Program: buf.String()}, nil
}

// area returns the printed area of a layer: outer loops count positive
// and holes negative, whatever their winding.
func area(paths []geom.Path) float64 {
	var total float64
	for i, p := range paths {
		a := math.Abs(p.Area())
		if depth(paths, i)%2 == 1 {
			a = -a
		}
		total += a
	}
	return total
}

// depth counts the paths that enclose paths[i].
func depth(paths []geom.Path, i int) int {
	var n int
	for j, p := range paths {
		if j != i && len(paths[i]) > 0 && p.Contains(paths[i][0]) {
			n++
		}
	}
	return n
}

// Solid is the classification of one solid sliced on its own.
type Solid struct {
	Layers    []slicer.Layer
	Sequences []surface.Sequence
}

// Reconcile carries the per-solid flags over to the combined layers. A
// combined layer takes the flags of each solid's layer nearest in height,
// when one lies within tol, ORed together across solids.
func Reconcile(layers []slicer.Layer, solids []Solid, tol float64) []surface.Sequence {
	seqs := make([]surface.Sequence, len(layers))
	for _, solid := range solids {
		for i, l := range layers {
			j, ok := nearest(solid.Layers, l.Z, tol)
			if !ok {
				continue
			}
			seqs[i].IsBottom = seqs[i].IsBottom || solid.Sequences[j].IsBottom
			seqs[i].IsTop = seqs[i].IsTop || solid.Sequences[j].IsTop
		}
	}
	return seqs
}

// nearest returns the index of the layer closest to z, which must be
// within tol. Layers are in ascending Z.
func nearest(layers []slicer.Layer, z, tol float64) (int, bool) {
	i := sort.Search(len(layers), func(i int) bool { return layers[i].Z >= z })
	best, bestDist := -1, math.Inf(1)
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(layers) {
			continue
		}
		if d := math.Abs(layers[j].Z - z); d < bestDist {
			best, bestDist = j, d
		}
	}
	if best < 0 || bestDist > tol+1e-9 {
		return 0, false
	}
	return best, true
}

func countShells(seqs []surface.Sequence) int {
	var n int
	for _, s := range seqs {
		if s.Shell() {
			n++
		}
	}
	return n
}
