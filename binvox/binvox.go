// Package binvox voxelizes sliced layers and writes binvox files.
package binvox

import (
	"fmt"
	"math"

	"github.com/gmlewis/fdm-slicer/slicer"
	"github.com/gmlewis/stldice/v4/binvox"
)

// Slice voxelizes the layers at res millimeters per voxel in X and Y (one
// voxel per layer in Z) and writes the result to filename.
func Slice(filename string, layers []slicer.Layer, res float64) error {
	b, _, err := Voxelize(layers, res)
	if err != nil {
		return err
	}
	if err := b.Write(filename, 0, 0, 0, b.NX, b.NY, b.NZ); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// Voxelize returns the voxel grid of the layers and the number of voxels
// set. Only the surface voxels of the solid are set: those with an empty
// neighbor in X, Y or Z.
func Voxelize(layers []slicer.Layer, res float64) (*binvox.BinVOX, int, error) {
	grid, err := slicer.NewGrid(layers, res)
	if err != nil {
		return nil, 0, err
	}

	minZ := math.Inf(1)
	maxZ := math.Inf(-1)
	for _, l := range layers {
		minZ = math.Min(minZ, l.Z)
		maxZ = math.Max(maxZ, l.Z)
	}
	nx, ny := float64(grid.NX)*res, float64(grid.NY)*res
	scale := math.Max(math.Max(nx, ny), maxZ-minZ)

	b := binvox.New(grid.NX, grid.NY, len(layers), grid.Origin.X(), grid.Origin.Y(), minZ, scale, false)
	c := newClient(b, grid, len(layers))
	if err := slicer.Walk(layers, c); err != nil {
		return nil, 0, err
	}
	c.flush()
	return b, c.count, nil
}

// client represents a layers-to-binvox converter.
// It implements the slicer.LayerProcessor interface.
//
// It keeps a window of three layers so a voxel can be tested against the
// layers above and below before it is added.
type client struct {
	b    *binvox.BinVOX
	grid slicer.Grid
	nz   int

	lastSlice *uvSlice
	curSlice  *uvSlice
	curZ      int

	count int
}

// client implements the LayerProcessor interface.
var _ slicer.LayerProcessor = &client{}

// uvSlice represents the occupied cells of one layer indexed by uv
// (integer) grid coordinates.
type uvSlice struct {
	p map[int]struct{}
}

func (s *uvSlice) has(key int) bool {
	if s == nil {
		return false
	}
	_, ok := s.p[key]
	return ok
}

func newClient(b *binvox.BinVOX, grid slicer.Grid, nz int) *client {
	return &client{b: b, grid: grid, nz: nz, curZ: -1}
}

func (c *client) key(u, v int) int { return v*c.grid.NX + u }

func (c *client) ProcessLayer(l *slicer.Layer) error {
	next := &uvSlice{p: map[int]struct{}{}}
	c.grid.Rasterize(l, func(u, v int) {
		next.p[c.key(u, v)] = struct{}{}
	})

	c.emit(next)
	c.lastSlice, c.curSlice = c.curSlice, next
	c.curZ++
	return nil
}

// flush emits the final layer, which has nothing above it.
func (c *client) flush() {
	c.emit(nil)
}

// emit adds the surface voxels of the current layer, given the layer
// above it.
func (c *client) emit(above *uvSlice) {
	if c.curSlice == nil {
		return
	}
	nx := c.grid.NX
	for key := range c.curSlice.p {
		u, v := key%nx, key/nx
		interior := c.lastSlice.has(key) && above.has(key) &&
			u > 0 && c.curSlice.has(key-1) &&
			u < nx-1 && c.curSlice.has(key+1) &&
			c.curSlice.has(key-nx) && c.curSlice.has(key+nx)
		if interior {
			continue
		}
		c.b.Add(u, v, c.curZ)
		c.count++
	}
}
