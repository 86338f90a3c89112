package rewrite

import (
	"bytes"

	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// captured holds the exact bytes of one construct in the encoding it was read
// in, so it can be read more than once.
type captured struct {
	typ  xcontent.Type
	data []byte
}

// capture copies the structure at p's current event. p is left on the
// structure's last event.
func capture(p xcontent.Parser) (*captured, error) {
	var buf bytes.Buffer
	g := xcontent.NewGenerator(p.Type(), &buf)
	if err := xcontent.CopyCurrentStructure(g, p); err != nil {
		return nil, err
	}
	if err := g.Close(); err != nil {
		return nil, err
	}
	return &captured{typ: p.Type(), data: buf.Bytes()}, nil
}

// open returns an independent parser positioned on the capture's first event.
func (c *captured) open() (xcontent.Parser, error) {
	p, err := xcontent.NewParser(c.typ, c.data)
	if err != nil {
		return nil, err
	}
	if _, err := xcontent.Expect(p); err != nil {
		return nil, err
	}
	return p, nil
}

// replay copies the whole capture into g.
func (c *captured) replay(g xcontent.Generator) error {
	p, err := c.open()
	if err != nil {
		return err
	}
	return xcontent.CopyCurrentStructure(g, p)
}
