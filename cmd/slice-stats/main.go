// slice-stats slices STL files at a range of layer heights and reports
// statistics of the resulting G-code programs, so that the effect of the
// layer height on print size might be inferred.
//
// Output is one tab-separated row per file and layer height:
//
//	file  layerHeight  layers  moves  extrudedMM  travelMM  filament  bytes
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gmlewis/fdm-slicer/config"
	"github.com/gmlewis/fdm-slicer/gcode"
	"github.com/gmlewis/fdm-slicer/pipeline"
	"github.com/gmlewis/fdm-slicer/stl"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.StringP("config", "c", "", "YAML settings file")
	heights    = flag.Float64Slice("heights", []float64{0.3, 0.25, 0.2, 0.15, 0.1}, "Layer heights to try, in millimeters")
	maxSize    = flag.Int("max", 50000000, "Stop trying smaller layer heights once the program exceeds max bytes")
)

func main() {
	flag.Parse()

	settings := config.Default()
	if *configFile != "" {
		var err error
		settings, err = config.Load(*configFile)
		check("config.Load: %v", err)
	}

	pts := []string{"file\tlayerHeight\tlayers\tmoves\textrudedMM\ttravelMM\tfilament\tbytes"}
	for _, arg := range flag.Args() {
		m, err := stl.ReadFile(arg)
		check("stl.ReadFile: %v", err)

		for _, lh := range *heights {
			s := settings
			s.LayerHeight = lh
			log.Printf("Slicing %v at %vmm...", arg, lh)
			r, err := pipeline.Slice(context.Background(), m, s)
			check("%v: %v", arg, err)

			p, err := gcode.Parse(strings.NewReader(r.Program))
			check("gcode.Parse: %v", err)

			pts = append(pts, fmt.Sprintf("%v\t%v\t%v\t%v\t%.1f\t%.1f\t%.3f\t%v",
				arg, lh, p.Layers, len(p.Moves), p.ExtrudedDist, p.TravelDist, p.TotalE, len(r.Program)))

			if len(r.Program) >= *maxSize {
				break
			}
		}
	}

	fmt.Printf("%v\n", strings.Join(pts, "\n"))
	log.Printf("Done.")
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
