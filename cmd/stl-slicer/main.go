// stl-slicer slices one or more STL files into a G-code program for an
// FDM printer.
//
// Every STL file on the command line is treated as a separate solid
// placed on the same build plate; they are printed together in a single
// program named after the first file.
//
// Optionally, the sliced layers are also written as a ZIP of PNG images,
// an SVX voxel file, or a binvox file.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gmlewis/fdm-slicer/binvox"
	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/infill"
	"github.com/gmlewis/fdm-slicer/pipeline"
	"github.com/gmlewis/fdm-slicer/stl"
	"github.com/gmlewis/fdm-slicer/zipper"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.StringP("config", "c", "", "YAML settings file (flags below override it)")
	outFile    = flag.StringP("out", "o", "", "Output G-code file, or - for stdout (default is <first-input>.gcode)")
	verbose    = flag.BoolP("verbose", "v", false, "Log progress to stderr")
	debug      = flag.Bool("debug", false, "Log per-layer details to stderr")

	layerHeight = flag.Float64("layer-height", 0, "Layer height in millimeters")
	topBottom   = flag.Int("top-bottom", 0, "Number of solid top and bottom layers")
	nozzle      = flag.Float64("nozzle", 0, "Nozzle (extrusion line) diameter in millimeters")
	density     = flag.Float64("density", 0, "Sparse infill density in percent (0-100)")
	workers     = flag.Int("workers", 0, "Number of goroutines tracing perimeters")
	maxSegments = flag.Int("max-segments", 0, "Refuse layers with more segments than this (0 = unlimited)")
	pattern     = infill.Grid

	writeBinvox = flag.Bool("binvox", false, "Also write the sliced layers as a binvox file")
	writeSVX    = flag.Bool("svx", false, "Also write the sliced layers as an SVX voxel file")
	writeZip    = flag.Bool("zip", false, "Also write the sliced layers as a ZIP of PNG images")
	res         = flag.Float64("res", 0.1, "XY resolution in millimeters for -binvox, -svx and -zip")
)

func init() {
	flag.Var(&pattern, "pattern", "Infill pattern: grid or lines")
}

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("usage: stl-slicer [flags] model.stl [more.stl...]")
	}

	settings := config.Default()
	if *configFile != "" {
		var err error
		settings, err = config.Load(*configFile)
		check("config.Load: %v", err)
	}
	applyFlags(&settings)
	check("invalid settings: %v", settings.Validate())

	switch {
	case *debug:
		pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	case *verbose:
		pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	var meshes []*stl.Mesh
	var firstArg string
	for _, arg := range flag.Args() {
		if !strings.HasSuffix(strings.ToLower(arg), ".stl") {
			log.Printf("Skipping non-STL file %q", arg)
			continue
		}
		log.Printf("Loading %q...", arg)
		m, err := stl.ReadFile(arg)
		check("stl.ReadFile: %v", err)
		box := m.BoundingBox()
		log.Printf("%v: %v triangles, MBB=(%.2f,%.2f,%.2f)-(%.2f,%.2f,%.2f)", arg, len(m.Triangles),
			box.Min.X(), box.Min.Y(), box.Min.Z(), box.Max.X(), box.Max.Y(), box.Max.Z())
		if firstArg == "" {
			firstArg = arg
		}
		meshes = append(meshes, m)
	}
	if len(meshes) == 0 {
		log.Fatalf("No STL files to slice.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Slicing %v solid(s) at %vmm layer height, %v%% %v infill along %v...",
		len(meshes), settings.LayerHeight, settings.InfillDensity, settings.InfillPattern, settings.InfillPattern.Angles())
	result, err := pipeline.SliceSolids(ctx, meshes, settings)
	check("%v", err)

	baseName := firstArg[:len(firstArg)-len(".stl")]

	out := *outFile
	if out == "" {
		out = baseName + ".gcode"
	}
	if out == "-" {
		_, err = os.Stdout.WriteString(result.Program)
		check("Write: %v", err)
	} else {
		log.Printf("Writing: %v", out)
		check("WriteFile: %v", os.WriteFile(out, []byte(result.Program), 0644))
	}

	if *writeBinvox {
		log.Printf("Writing: %v.binvox (%v layers)", baseName, len(result.Layers))
		check("binvox.Slice: %v", binvox.Slice(baseName+".binvox", result.Layers, *res))
	}
	if *writeSVX {
		log.Printf("Writing: %v.svx (%v layers)", baseName, len(result.Layers))
		check("zipper.SVXSlice: %v", zipper.SVXSlice(baseName, result.Layers, *res))
	}
	if *writeZip {
		log.Printf("Writing: %v.zip (%v layers)", baseName, len(result.Layers))
		check("zipper.Slice: %v", zipper.Slice(baseName, result.Layers, *res))
	}

	log.Println("Done.")
}

// applyFlags overrides settings with the flags given on the command line.
func applyFlags(s *config.Settings) {
	changed := flag.CommandLine.Changed
	if changed("layer-height") {
		s.LayerHeight = *layerHeight
	}
	if changed("top-bottom") {
		s.TopBottomLayers = *topBottom
	}
	if changed("nozzle") {
		s.NozzleDiameter = *nozzle
	}
	if changed("density") {
		s.InfillDensity = *density
	}
	if changed("pattern") {
		s.InfillPattern = pattern
	}
	if changed("workers") {
		s.Workers = *workers
	}
	if changed("max-segments") {
		s.MaxSegmentsPerLayer = *maxSegments
	}
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
