package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rasterize calls set(u, v) for every cell of an nx by ny grid whose center
// lies in solid material under the even-odd rule. Cell (0,0) has its lower
// left corner at origin and each cell is res units wide.
func Rasterize(paths []Path, origin mgl64.Vec2, res float64, nx, ny int, set func(u, v int)) {
	if res <= 0 {
		return
	}
	for v := 0; v < ny; v++ {
		y := origin.Y() + (float64(v)+0.5)*res
		xs := Crossings(paths, y)
		for i := 0; i+1 < len(xs); i += 2 {
			// Cell centers satisfying xs[i] <= x < xs[i+1].
			u0 := int(math.Ceil((xs[i]-origin.X())/res - 0.5))
			u1 := int(math.Ceil((xs[i+1]-origin.X())/res - 0.5))
			if u0 < 0 {
				u0 = 0
			}
			if u1 > nx {
				u1 = nx
			}
			for u := u0; u < u1; u++ {
				set(u, v)
			}
		}
	}
}
