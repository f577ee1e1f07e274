package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Move is one G0 or G1 command after its parameters have been applied to
// the absolute machine state.
type Move struct {
	From, To  mgl64.Vec3
	E         float64 // absolute filament position after the move
	Feed      float64
	Extruding bool
	Layer     int // number of layer markers seen before the move
}

// Program summarizes a parsed G-code program.
type Program struct {
	Moves    []Move
	Layers   int
	Commands map[string]int

	TotalE       float64
	ExtrudedDist float64
	TravelDist   float64

	// Min and Max bound the endpoints of all extruding moves.
	Min, Max mgl64.Vec3
}

// Parse reads a G-code program, tracking absolute X, Y, Z, E and F.
//
// A G0/G1 whose E value increases is an extruding move. A line that is
// not a full-line comment and whose trailing comment contains "layer"
// (in any case) marks the start of a new layer.
func Parse(r io.Reader) (*Program, error) {
	p := &Program{
		Commands: map[string]int{},
		Min:      mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max:      mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	var pos mgl64.Vec3
	var e, feed float64

	scanner := bufio.NewScanner(r)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		code, comment := line, ""
		if i := strings.Index(line, ";"); i >= 0 {
			code, comment = strings.TrimSpace(line[:i]), line[i+1:]
		}
		if strings.Contains(strings.ToLower(comment), "layer") {
			p.Layers++
		}

		fields := strings.Fields(code)
		if len(fields) == 0 {
			continue
		}
		cmd := strings.ToUpper(fields[0])
		p.Commands[cmd]++
		if cmd != "G0" && cmd != "G1" {
			continue
		}

		next, nextE := pos, e
		for _, f := range fields[1:] {
			if len(f) < 2 {
				return nil, fmt.Errorf("line %v: bad parameter %q", lineNum, f)
			}
			v, err := strconv.ParseFloat(f[1:], 64)
			if err != nil {
				return nil, fmt.Errorf("line %v: bad parameter %q: %w", lineNum, f, err)
			}
			switch f[0] {
			case 'X', 'x':
				next[0] = v
			case 'Y', 'y':
				next[1] = v
			case 'Z', 'z':
				next[2] = v
			case 'E', 'e':
				nextE = v
			case 'F', 'f':
				feed = v
			default:
				return nil, fmt.Errorf("line %v: unknown parameter %q", lineNum, f)
			}
		}

		m := Move{From: pos, To: next, E: nextE, Feed: feed, Extruding: nextE > e, Layer: p.Layers}
		p.Moves = append(p.Moves, m)

		dist := next.Sub(pos).Len()
		if m.Extruding {
			p.ExtrudedDist += dist
			p.TotalE += nextE - e
			p.extend(pos)
			p.extend(next)
		} else {
			p.TravelDist += dist
		}
		pos, e = next, nextE
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) extend(v mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		p.Min[i] = math.Min(p.Min[i], v[i])
		p.Max[i] = math.Max(p.Max[i], v[i])
	}
}

// ExtrudingMoves returns the number of extruding moves.
func (p *Program) ExtrudingMoves() int {
	var n int
	for _, m := range p.Moves {
		if m.Extruding {
			n++
		}
	}
	return n
}
