package slicer

import (
	"fmt"
	"math"

	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Grid is the raster that layer exporters draw every layer on. Cell (0,0)
// has its lower left corner at Origin.
type Grid struct {
	Origin mgl64.Vec2
	Res    float64
	NX, NY int
}

// NewGrid returns a grid of res-sized cells covering the paths of every
// layer, with a one cell margin on each side.
func NewGrid(layers []Layer, res float64) (Grid, error) {
	if !(res > 0) {
		return Grid{}, fmt.Errorf("resolution must be positive, got %v", res)
	}
	bounds := geom.EmptyBounds()
	for i := range layers {
		bounds = bounds.Union(layers[i].Bounds())
	}
	if bounds.Empty() {
		return Grid{}, fmt.Errorf("no paths to rasterize in %v layers", len(layers))
	}

	size := bounds.Size()
	return Grid{
		Origin: bounds.Min.Sub(mgl64.Vec2{res, res}),
		Res:    res,
		NX:     int(math.Ceil(size.X()/res)) + 2,
		NY:     int(math.Ceil(size.Y()/res)) + 2,
	}, nil
}

// Rasterize calls set for every cell of the grid inside the layer's solid
// material.
func (g Grid) Rasterize(l *Layer, set func(u, v int)) {
	geom.Rasterize(l.Paths, g.Origin, g.Res, g.NX, g.NY, set)
}
