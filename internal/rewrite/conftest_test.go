package rewrite

import (
	"bytes"
	"context"
	"testing"

	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	"github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/index/memory"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// testParsers maps age and score as long, price as double, name as keyword.
func testParsers(t *testing.T) *queryparser.Service {
	t.Helper()
	m, err := mapping.New(map[string]string{
		"age":   "long",
		"score": "long",
		"price": "double",
		"name":  "keyword",
	})
	if err != nil {
		t.Fatal(err)
	}
	return queryparser.New("people", m)
}

// testSnapshot holds two segments whose combined age extent is [10, 100].
// No segment has postings for score.
func testSnapshot(t *testing.T) index.Snapshot {
	t.Helper()
	a, _ := segment.New("a", 2, 1)
	b, _ := segment.New("b", 2, 2)
	return index.NewSnapshot(
		memory.NewSegment(a, segment.Terms{"age": {10, 50}}),
		memory.NewSegment(b, segment.Terms{"age": {30, 100}}),
	)
}

// convert transcodes a single document between encoding families.
func convert(t *testing.T, from xcontent.Type, data []byte, to xcontent.Type) []byte {
	t.Helper()
	p, err := xcontent.NewParser(from, data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Next(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	g := xcontent.NewGenerator(to, &buf)
	if err := xcontent.CopyCurrentStructure(g, p); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// segmentFunc is a Segment whose NumericRange is a test hook.
type segmentFunc struct {
	id string
	fn func(ctx context.Context, field string) (int64, int64, bool, error)
}

func (s segmentFunc) ID() string { return s.id }

func (s segmentFunc) NumericRange(ctx context.Context, field string) (int64, int64, bool, error) {
	return s.fn(ctx, field)
}
