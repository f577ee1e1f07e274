package infill

import (
	"fmt"
	"math"
	"testing"

	"github.com/gmlewis/fdm-slicer/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func square(x0, y0, size float64) geom.Path {
	return geom.Path{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}}
}

func TestScanLineExcludesHoles(t *testing.T) {
	paths := []geom.Path{square(0, 0, 20), square(5, 5, 10)}

	got := ScanLine(paths, 10)
	want := []geom.Segment{
		{Start: mgl64.Vec2{0, 10}, End: mgl64.Vec2{5, 10}},
		{Start: mgl64.Vec2{15, 10}, End: mgl64.Vec2{20, 10}},
	}
	if len(got) != len(want) {
		t.Fatalf("ScanLine = %v segments, want %v: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.ApproxEqual(want[i].Start) || !got[i].End.ApproxEqual(want[i].End) {
			t.Errorf("segment #%v = %v, want %v", i, got[i], want[i])
		}
	}
	for _, s := range got {
		mid := s.Midpoint()
		if mid.X() > 5 && mid.X() < 15 {
			t.Errorf("segment %v spans the hole", s)
		}
	}
}

func TestScanLine(t *testing.T) {
	tests := []struct {
		name  string
		paths []geom.Path
		y     float64
		want  int
	}{
		{name: "no paths", y: 1},
		{name: "above", paths: []geom.Path{square(0, 0, 10)}, y: 11},
		{name: "through square", paths: []geom.Path{square(0, 0, 10)}, y: 5, want: 1},
		{name: "two islands", paths: []geom.Path{square(0, 0, 10), square(20, 0, 10)}, y: 5, want: 2},
		{name: "sliver shorter than minimum", paths: []geom.Path{square(0, 0, 0.05)}, y: 0.025},
		{
			name:  "island in a hole",
			paths: []geom.Path{square(0, 0, 30), square(5, 5, 20), square(10, 10, 10)},
			y:     15,
			want:  3,
		},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %v", i, tt.name), func(t *testing.T) {
			if got := ScanLine(tt.paths, tt.y); len(got) != tt.want {
				t.Errorf("ScanLine = %v, want %v segments", got, tt.want)
			}
		})
	}
}

func TestSpacing(t *testing.T) {
	tests := []struct {
		density float64
		want    float64
	}{
		{density: -5, want: 0},
		{density: 0, want: 0},
		{density: 50, want: 3},
		{density: 100, want: 0.35},
		{density: 150, want: 0.35},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: density %v", i, tt.density), func(t *testing.T) {
			if got := Spacing(tt.density, 0.4); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Spacing = %v, want %v", got, tt.want)
			}
		})
	}

	// Sparser as density falls.
	if Spacing(20, 0.4) <= Spacing(80, 0.4) {
		t.Errorf("Spacing(20) = %v should exceed Spacing(80) = %v", Spacing(20, 0.4), Spacing(80, 0.4))
	}
}

func TestSolidCoversBothDirections(t *testing.T) {
	p := square(0, 0, 10)
	paths := []geom.Path{p}
	segs := Solid(geom.PathsBounds(paths), paths, 0.4)

	var alongX, alongY int
	for _, s := range segs {
		if math.Abs(s.Len()-10) > 1e-9 {
			t.Errorf("segment %v has length %v, want 10", s, s.Len())
		}
		switch {
		case s.Start.Y() == s.End.Y():
			alongX++
		case s.Start.X() == s.End.X():
			alongY++
		default:
			t.Errorf("segment %v is not axis aligned", s)
		}
	}
	// 0.175 + 0.35*i <= 10 for i in [0,28].
	if alongX != 29 || alongY != 29 {
		t.Errorf("Solid lines = %v along X and %v along Y, want 29 each", alongX, alongY)
	}
}

func TestScanAlternatesDirection(t *testing.T) {
	paths := []geom.Path{square(0, 0, 10)}
	segs := Scan(geom.PathsBounds(paths), 2, paths, AlongX)
	if len(segs) != 5 {
		t.Fatalf("Scan = %v segments, want 5", len(segs))
	}
	for i, s := range segs {
		leftToRight := s.Start.X() < s.End.X()
		if leftToRight != (i%2 == 0) {
			t.Errorf("segment #%v = %v, wrong traversal direction", i, s)
		}
		if want := 1 + 2*float64(i); math.Abs(s.Start.Y()-want) > 1e-9 {
			t.Errorf("segment #%v at y=%v, want %v", i, s.Start.Y(), want)
		}
	}

	segs = Scan(geom.PathsBounds(paths), 2, paths, AlongY)
	for i, s := range segs {
		if s.Start.X() != s.End.X() {
			t.Errorf("segment #%v = %v, want vertical", i, s)
		}
	}
}

func TestFill(t *testing.T) {
	paths := []geom.Path{square(0, 0, 20)}
	bounds := geom.PathsBounds(paths)

	if got := Fill(bounds, Grid, 0, paths, 0.4); got != nil {
		t.Errorf("Fill at 0%% = %v segments, want none", len(got))
	}

	lines := Fill(bounds, Lines, 20, paths, 0.4)
	if len(lines) == 0 {
		t.Fatal("Fill(Lines) produced no segments")
	}
	for _, s := range lines {
		if s.Start.Y() != s.End.Y() {
			t.Errorf("Lines produced non-horizontal segment %v", s)
		}
	}

	grid := Fill(bounds, Grid, 20, paths, 0.4)
	if len(grid) != 2*len(lines) {
		t.Errorf("Fill(Grid) = %v segments, want %v", len(grid), 2*len(lines))
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    Pattern
		wantErr bool
	}{
		{in: "grid", want: Grid},
		{in: "Lines", want: Lines},
		{in: " GRID ", want: Grid},
		{in: "honeycomb", wantErr: true},
		{in: "", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test #%v: %q", i, tt.in), func(t *testing.T) {
			got, err := ParsePattern(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePattern err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParsePattern = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatternText(t *testing.T) {
	for _, p := range []Pattern{Lines, Grid} {
		b, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", p, err)
		}
		var got Pattern
		if err := got.UnmarshalText(b); err != nil || got != p {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, got, err, p)
		}
	}

	if _, err := Pattern(7).MarshalText(); err == nil {
		t.Error("MarshalText of unknown pattern succeeded")
	}
	if got := Pattern(7).String(); got != "Pattern(7)" {
		t.Errorf("String = %q", got)
	}
	if got := AlongY.Degrees(); got != 90 {
		t.Errorf("AlongY.Degrees = %v, want 90", got)
	}
}
