// Package stl ingests triangle meshes from binary or ASCII STL data and
// provides a streaming binary STL writer for generated solids.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	headerSize = 80
	bufSize    = 10000
)

// Client is a streaming binary STL file writer client.
type Client struct {
	wg sync.WaitGroup // ensures file is closed
	ch chan tri

	mu  sync.RWMutex
	err error
}

// tri is the on-disk layout of one binary STL triangle.
type tri struct {
	// Normal plus three vertex triplets: [3]float{x,y,z}
	N, V1, V2, V3 [3]float32
	_             uint16 // unused attribute byte count
}

func toTri(t Triangle) tri {
	f32 := func(v [3]float64) [3]float32 {
		return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	return tri{N: f32(t.Normal()), V1: f32(t[0]), V2: f32(t[1]), V3: f32(t[2])}
}

// New creates a new streaming binary STL file writer.
func New(filename string) (*Client, error) {
	out, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return newClient(out)
}

// newClient writes the header to out and starts the writer goroutine.
// out is closed if the header cannot be written.
func newClient(out writeSeekCloser) (*Client, error) {
	header := struct {
		_ [headerSize]uint8
		_ uint32 // count will be overwritten on channel close.
	}{}
	if err := binary.Write(out, binary.LittleEndian, &header); err != nil {
		out.Close()
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	c := &Client{ch: make(chan tri, bufSize)}
	c.start(out)
	return c, nil
}

func (c *Client) start(out writeSeekCloser) {
	c.wg.Add(1)
	go func() {
		err := writer(out, c.ch)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.wg.Done()
	}()
}

// Write writes a triangle to the STL file.
func (c *Client) Write(t Triangle) error {
	c.ch <- toTri(t)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// WriteMesh writes every triangle of m.
func (c *Client) WriteMesh(m *Mesh) error {
	for _, t := range m.Triangles {
		if err := c.Write(t); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes the STL file.
func (c *Client) Close() error {
	close(c.ch)
	c.wg.Wait()
	return c.err
}

type writeSeekCloser interface {
	io.Writer
	io.Seeker
	io.Closer
}

// writer always closes out. After a failure it keeps draining ch so
// that callers of Write never block.
func writer(out writeSeekCloser, ch <-chan tri) (err error) {
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		for range ch {
		}
	}()

	var count uint32
	for t := range ch {
		if err := binary.Write(out, binary.LittleEndian, &t); err != nil {
			return fmt.Errorf("write triangle %#v: %w", t, err)
		}
		count++
	}

	if _, err := out.Seek(headerSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	if err := binary.Write(out, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("write count %v: %w", count, err)
	}
	return nil
}
