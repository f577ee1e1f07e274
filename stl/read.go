package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	countSize   = 4
	triSize     = 50 // 12 normal + 36 vertices + 2 attribute bytes
	asciiPrefix = "solid"
)

// Format identifies an STL encoding.
type Format int

const (
	// Binary is the 80-byte header, little-endian encoding.
	Binary Format = iota
	// ASCII is the keyword-delimited text encoding.
	ASCII
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseError reports malformed or truncated mesh input.
type ParseError struct {
	Format Format
	Line   int // 1-based line number for ASCII input, 0 otherwise
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("stl: %v line %v: %v", e.Format, e.Line, e.Msg)
	}
	return fmt.Sprintf("stl: %v: %v", e.Format, e.Msg)
}

// DetectFormat sniffs the encoding of buf. Data starting with "solid" is
// ASCII unless its length exactly matches the binary layout it declares,
// since some exporters write "solid" into binary headers.
func DetectFormat(buf []byte) Format {
	if !bytes.HasPrefix(buf, []byte(asciiPrefix)) {
		return Binary
	}
	if len(buf) >= headerSize+countSize {
		n := binary.LittleEndian.Uint32(buf[headerSize:])
		if uint64(len(buf)) == headerSize+countSize+uint64(n)*triSize {
			return Binary
		}
	}
	return ASCII
}

// Ingest parses an STL mesh in either encoding.
// Degenerate triangles are kept; the slicer ignores them.
func Ingest(buf []byte) (*Mesh, error) {
	switch f := DetectFormat(buf); f {
	case Binary:
		return parseBinary(buf)
	case ASCII:
		return parseASCII(bytes.NewReader(buf))
	default:
		return nil, &ParseError{Format: f, Msg: "unsupported format"}
	}
}

// Read reads all of r and parses it as an STL mesh.
func Read(r io.Reader) (*Mesh, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Ingest(buf)
}

// ReadFile reads and parses the named STL file.
func ReadFile(filename string) (*Mesh, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Ingest(buf)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	if m.Name == "" {
		m.Name = filename
	}
	return m, nil
}

func parseBinary(buf []byte) (*Mesh, error) {
	if len(buf) < headerSize+countSize {
		return nil, &ParseError{Format: Binary, Msg: fmt.Sprintf("truncated header: %v bytes", len(buf))}
	}
	n := binary.LittleEndian.Uint32(buf[headerSize:])
	want := headerSize + countSize + uint64(n)*triSize
	if uint64(len(buf)) != want {
		return nil, &ParseError{
			Format: Binary,
			Msg:    fmt.Sprintf("triangle count %v requires %v bytes, got %v", n, want, len(buf)),
		}
	}

	m := &Mesh{Triangles: make([]Triangle, n)}
	for i := range m.Triangles {
		off := headerSize + countSize + i*triSize + 12 // skip the normal
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				bits := binary.LittleEndian.Uint32(buf[off+(3*j+k)*4:])
				m.Triangles[i][j][k] = float64(math.Float32frombits(bits))
			}
		}
	}
	return m, nil
}

func parseASCII(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	fail := func(line int, format string, args ...interface{}) error {
		return &ParseError{Format: ASCII, Line: line, Msg: fmt.Sprintf(format, args...)}
	}

	var (
		inFacet  bool
		verts    []mgl64.Vec3
		lineNum  int
		facetNum int
	)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		lineNum++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 && m.Name == "" {
				m.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if inFacet {
				return nil, fail(lineNum, "facet %v not closed by endfacet", facetNum)
			}
			inFacet = true
			verts = verts[:0]
			facetNum++
		case "vertex":
			if !inFacet {
				return nil, fail(lineNum, "vertex outside facet")
			}
			if len(fields) != 4 {
				return nil, fail(lineNum, "vertex needs 3 coordinates, found %v", len(fields)-1)
			}
			var v mgl64.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fail(lineNum, "bad vertex coordinate %q", fields[i+1])
				}
				v[i] = f
			}
			verts = append(verts, v)
		case "endfacet":
			if !inFacet {
				return nil, fail(lineNum, "endfacet without facet")
			}
			if len(verts) != 3 {
				return nil, fail(lineNum, "facet %v has %v vertices, want 3", facetNum, len(verts))
			}
			m.Triangles = append(m.Triangles, Triangle{verts[0], verts[1], verts[2]})
			inFacet = false
		case "outer", "endloop", "endsolid":
		default:
			return nil, fail(lineNum, "unexpected keyword %q", fields[0])
		}
	}
	if err := s.Err(); err != nil {
		return nil, fail(lineNum, "%v", err)
	}
	if inFacet {
		return nil, fail(lineNum, "unexpected end of input inside facet %v", facetNum)
	}
	return m, nil
}
