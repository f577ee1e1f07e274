package zipper

import (
	"archive/zip"
	"fmt"
	"time"

	"github.com/gmlewis/fdm-slicer/slicer"
)

// SVXSlice writes the layers to baseFilename.svx, a ZIP of density
// slices plus the manifest describing the voxel grid.
func SVXSlice(baseFilename string, layers []slicer.Layer, res float64) error {
	return create(baseFilename+".svx", layers, res, true)
}

func (zp *zipper) writeManifest(numLayers int) error {
	fh := &zip.FileHeader{
		Name:     "manifest.xml",
		Modified: time.Now(),
	}
	f, err := zp.w.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("Unable to create ZIP file %q: %w", fh.Name, err)
	}

	_, err = fmt.Fprintf(f, manifestFmt,
		zp.grid.NX,
		zp.grid.NY,
		numLayers,
		zp.grid.Res/1000.0, // voxelSize in meters
		"fdm-slicer",
		time.Now().Format("2006-01-02"))
	return err
}

var manifestFmt = `<?xml version="1.0"?>

<grid version="1.0" gridSizeX="%v" gridSizeY="%v" gridSizeZ="%v"
   voxelSize="%v" subvoxelBits="8" slicesOrientation="Z" >

    <channels>
        <channel type="DENSITY" bits="8" slices="density/slice%%04d.png" />
    </channels>

    <materials>
        <material id="1" urn="urn:shapeways:materials/1" />
    </materials>

    <metadata>
        <entry key="author" value=%q />
        <entry key="creationDate" value=%q />
    </metadata>
</grid>`
