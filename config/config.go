// Package config holds the settings of one slicing run and loads them
// from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gmlewis/fdm-slicer/infill"
	"gopkg.in/yaml.v2"
)

// Settings configures one slicing run. It is treated as immutable once
// the run starts.
type Settings struct {
	LayerHeight     float64        `yaml:"layerHeight"`
	TopBottomLayers int            `yaml:"topBottomLayers"`
	NozzleDiameter  float64        `yaml:"nozzleDiameter"`
	InfillPattern   infill.Pattern `yaml:"infillPattern"`
	InfillDensity   float64        `yaml:"infillDensity"`

	NozzleTemp     float64 `yaml:"nozzleTemp"`
	BedTemp        float64 `yaml:"bedTemp"`
	PrintSpeed     float64 `yaml:"printSpeed"`  // mm/s
	TravelSpeed    float64 `yaml:"travelSpeed"` // mm/s
	ExtrusionPerMM float64 `yaml:"extrusionPerMM"`
	SkirtLoops     int     `yaml:"skirtLoops"`
	SkirtDistance  float64 `yaml:"skirtDistance"`

	// Workers is the number of goroutines tracing perimeters.
	Workers int `yaml:"workers"`
	// MaxSegmentsPerLayer refuses layers with more segments than this.
	// Zero means unlimited.
	MaxSegmentsPerLayer int `yaml:"maxSegmentsPerLayer"`
}

// Default returns the settings used when nothing else is specified.
func Default() Settings {
	return Settings{
		LayerHeight:     0.2,
		TopBottomLayers: 3,
		NozzleDiameter:  0.4,
		InfillPattern:   infill.Grid,
		InfillDensity:   20,
		NozzleTemp:      200,
		BedTemp:         60,
		PrintSpeed:      40,
		TravelSpeed:     120,
		ExtrusionPerMM:  0.05,
		SkirtLoops:      1,
		SkirtDistance:   3,
		Workers:         1,
	}
}

// Load reads settings from a YAML file. Keys missing from the file keep
// their default values.
func Load(filename string) (Settings, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return Settings{}, err
	}
	s, err := Parse(buf)
	if err != nil {
		return Settings{}, fmt.Errorf("%v: %w", filename, err)
	}
	return s, nil
}

// Parse decodes YAML settings on top of Default and validates the
// result. Unknown keys are an error.
func Parse(buf []byte) (Settings, error) {
	s := Default()
	if err := yaml.UnmarshalStrict(buf, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Marshal encodes the settings as YAML, in the form Parse accepts.
func (s Settings) Marshal() ([]byte, error) { return yaml.Marshal(s) }

// Validate reports the first setting that cannot produce a print.
func (s Settings) Validate() error {
	switch {
	case !(s.LayerHeight > 0):
		return fmt.Errorf("layerHeight must be positive, got %v", s.LayerHeight)
	case s.TopBottomLayers < 0:
		return fmt.Errorf("topBottomLayers must not be negative, got %v", s.TopBottomLayers)
	case !(s.NozzleDiameter > 0):
		return fmt.Errorf("nozzleDiameter must be positive, got %v", s.NozzleDiameter)
	case s.InfillDensity < 0 || s.InfillDensity > 100:
		return fmt.Errorf("infillDensity must be within 0..100, got %v", s.InfillDensity)
	case !(s.ExtrusionPerMM > 0):
		return fmt.Errorf("extrusionPerMM must be positive, got %v", s.ExtrusionPerMM)
	case !(s.PrintSpeed > 0) || !(s.TravelSpeed > 0):
		return errors.New("printSpeed and travelSpeed must be positive")
	case s.SkirtLoops < 0:
		return fmt.Errorf("skirtLoops must not be negative, got %v", s.SkirtLoops)
	case s.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %v", s.Workers)
	case s.MaxSegmentsPerLayer < 0:
		return fmt.Errorf("maxSegmentsPerLayer must not be negative, got %v", s.MaxSegmentsPerLayer)
	}
	if _, err := s.InfillPattern.MarshalText(); err != nil {
		return err
	}
	return nil
}
