// Package zipper is a LayerProcessor that writes layer images to a ZIP file.
package zipper

import (
	"archive/zip"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/gmlewis/fdm-slicer/slicer"
)

// Slice writes the layers to baseFilename.zip as one PNG image per layer,
// res millimeters per pixel. Material is white, empty space black.
func Slice(baseFilename string, layers []slicer.Layer, res float64) error {
	return create(baseFilename+".zip", layers, res, false)
}

func create(filename string, layers []slicer.Layer, res float64, svx bool) error {
	zf, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	if err := Write(zf, layers, res, svx); err != nil {
		zf.Close()
		return err
	}
	if err := zf.Close(); err != nil {
		return fmt.Errorf("Unable to close ZIP file: %w", err)
	}
	return nil
}

// Write streams the ZIP archive to w. When svx is true the archive uses
// the SVX layout and carries its manifest.
func Write(w io.Writer, layers []slicer.Layer, res float64, svx bool) error {
	grid, err := slicer.NewGrid(layers, res)
	if err != nil {
		return err
	}

	zp := &zipper{w: zip.NewWriter(w), grid: grid, fmtStr: "out%04d.png"}
	if svx {
		zp.fmtStr = "density/slice%04d.png"
		if err := zp.writeManifest(len(layers)); err != nil {
			return err
		}
	}

	if err := slicer.Walk(layers, zp); err != nil {
		return err
	}
	if err := zp.w.Close(); err != nil {
		return fmt.Errorf("Unable to close ZIP writer: %w", err)
	}
	return nil
}

// zipper represents a LayerProcessor that writes its results to a ZIP file.
type zipper struct {
	w      *zip.Writer
	grid   slicer.Grid
	fmtStr string
}

// zipper implements the LayerProcessor interface.
var _ slicer.LayerProcessor = &zipper{}

func (zp *zipper) ProcessLayer(l *slicer.Layer) error {
	img := image.NewGray(image.Rect(0, 0, zp.grid.NX, zp.grid.NY))
	// Image rows run top-down; layer Y runs bottom-up.
	zp.grid.Rasterize(l, func(u, v int) {
		img.SetGray(u, zp.grid.NY-1-v, color.Gray{Y: 255})
	})

	filename := fmt.Sprintf(zp.fmtStr, l.Index)
	fh := &zip.FileHeader{
		Name:     filename,
		Comment:  fmt.Sprintf("z=%0.3f", l.Z),
		Modified: time.Now(),
	}
	f, err := zp.w.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("Unable to create ZIP file %q: %w", filename, err)
	}
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("PNG encode: %w", err)
	}
	return nil
}
