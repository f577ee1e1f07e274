// make-test-solids writes out simple STL example files for slicing:
// a cube, two boxes of different heights, a cylinder and a ring.
package main

import (
	"log"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/go-gl/mathgl/mgl64"
	flag "github.com/spf13/pflag"
)

var (
	dir   = flag.StringP("dir", "d", ".", "Output directory")
	cells = flag.Int("cells", 100, "Marching cubes cells along the longest axis of round solids")
)

func main() {
	flag.Parse()

	write("cube.stl", stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 20, 20}))
	write("two-boxes.stl", stl.Merge(
		stl.NewBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 10, 10}),
		stl.NewBox(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{30, 10, 20}),
	))

	cylinder, err := sdf.Cylinder3D(20, 10, 0)
	check("sdf.Cylinder3D: %v", err)
	write("cylinder.stl", toMesh(onPlate(cylinder, 20)))

	hole, err := sdf.Cylinder3D(22, 5, 0)
	check("sdf.Cylinder3D: %v", err)
	write("ring.stl", toMesh(onPlate(sdf.Difference3D(cylinder, hole), 20)))

	log.Printf("Done.")
}

// onPlate moves a solid centered on the origin so it rests on z=0.
func onPlate(s sdf.SDF3, height float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: height / 2}))
}

func toMesh(s sdf.SDF3) *stl.Mesh {
	renderer := render.NewMarchingCubesUniform(*cells)
	triangles := render.ToTriangles(s, renderer)

	m := &stl.Mesh{}
	for _, tri := range triangles {
		var t stl.Triangle
		for j := 0; j < 3; j++ {
			v := tri[j]
			t[j] = mgl64.Vec3{v.X, v.Y, v.Z}
		}
		m.Triangles = append(m.Triangles, t)
	}
	return m
}

func write(name string, m *stl.Mesh) {
	filename := filepath.Join(*dir, name)
	w, err := stl.New(filename)
	check("stl.New: %v", err)
	check("WriteMesh: %v", w.WriteMesh(m))
	check("Close: %v", w.Close())
	log.Printf("Wrote %v (%v triangles)", filename, len(m.Triangles))
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
