package xcontent

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/rangedex/internal/domain"
)

// maxAliasDepth bounds alias expansion so self-referencing anchors fail
// instead of recursing forever.
const maxAliasDepth = 64

type yamlEvent struct {
	tok  Token
	name string
	val  any
}

// yamlParser replays a decoded document node as events.
type yamlParser struct {
	events []yamlEvent
	pos    int
	cur    Token
	name   string
	val    any
}

func newYAMLParser(data []byte) (*yamlParser, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty yaml content", domain.ErrDecodeFailure)
		}
		return nil, fmt.Errorf("%w: yaml: %w", domain.ErrDecodeFailure, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: yaml content has no document", domain.ErrDecodeFailure)
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, fmt.Errorf("%w: yaml: %w", domain.ErrDecodeFailure, err)
	default:
		return nil, fmt.Errorf("%w: trailing content after yaml document", domain.ErrDecodeFailure)
	}

	p := &yamlParser{}
	if err := p.flatten(doc.Content[0], 0, 0); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *yamlParser) flatten(n *yaml.Node, depth, aliases int) error {
	if depth >= MaxDepth && (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) {
		return depthExceeded(YAML)
	}
	switch n.Kind {
	case yaml.AliasNode:
		if aliases >= maxAliasDepth || n.Alias == nil {
			return fmt.Errorf("%w: yaml alias %q cannot be resolved", domain.ErrDecodeFailure, n.Value)
		}
		return p.flatten(n.Alias, depth, aliases+1)
	case yaml.MappingNode:
		p.events = append(p.events, yamlEvent{tok: StartObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind == yaml.AliasNode && key.Alias != nil {
				key = key.Alias
			}
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: yaml mapping key at line %d is not a scalar", domain.ErrUnexpectedShape, key.Line)
			}
			p.events = append(p.events, yamlEvent{tok: FieldName, name: key.Value})
			if err := p.flatten(n.Content[i+1], depth+1, aliases); err != nil {
				return err
			}
		}
		p.events = append(p.events, yamlEvent{tok: EndObject})
	case yaml.SequenceNode:
		p.events = append(p.events, yamlEvent{tok: StartArray})
		for _, c := range n.Content {
			if err := p.flatten(c, depth+1, aliases); err != nil {
				return err
			}
		}
		p.events = append(p.events, yamlEvent{tok: EndArray})
	case yaml.ScalarNode:
		v, err := yamlScalar(n)
		if err != nil {
			return err
		}
		p.events = append(p.events, yamlEvent{tok: Value, val: v})
	default:
		return fmt.Errorf("%w: unsupported yaml node kind %d", domain.ErrDecodeFailure, n.Kind)
	}
	return nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: yaml bool at line %d: %w", domain.ErrDecodeFailure, n.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("%w: yaml int at line %d: %w", domain.ErrDecodeFailure, n.Line, err)
		}
		return normalizeUint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: yaml float at line %d: %w", domain.ErrDecodeFailure, n.Line, err)
		}
		return f, nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml binary at line %d: %w", domain.ErrDecodeFailure, n.Line, err)
		}
		return b, nil
	default:
		// !!str, !!timestamp and custom tags keep their literal text.
		return n.Value, nil
	}
}

func (p *yamlParser) Type() Type     { return YAML }
func (p *yamlParser) Current() Token { return p.cur }
func (p *yamlParser) Name() string   { return p.name }
func (p *yamlParser) Value() any     { return p.val }

func (p *yamlParser) Next() (Token, error) {
	if p.pos >= len(p.events) {
		p.cur = TokenNone
		return TokenNone, io.EOF
	}
	ev := p.events[p.pos]
	p.pos++
	p.cur = ev.tok
	switch ev.tok {
	case FieldName:
		p.name = ev.name
	case Value:
		p.val = ev.val
	}
	return p.cur, nil
}

// yamlGenerator builds a node tree and encodes it on Close.
type yamlGenerator struct {
	w     io.Writer
	root  *yaml.Node
	stack []*yaml.Node
	nest  nesting
	err   error
}

func newYAMLGenerator(w io.Writer) *yamlGenerator {
	return &yamlGenerator{w: w}
}

func (g *yamlGenerator) Type() Type { return YAML }
func (g *yamlGenerator) Err() error { return g.err }

func (g *yamlGenerator) attach(n *yaml.Node) {
	if len(g.stack) == 0 {
		g.root = n
		return
	}
	parent := g.stack[len(g.stack)-1]
	parent.Content = append(parent.Content, n)
}

func (g *yamlGenerator) StartObject() {
	g.open(&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, true)
}

func (g *yamlGenerator) StartArray() {
	g.open(&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}, false)
}

func (g *yamlGenerator) EndObject() { g.close(true) }
func (g *yamlGenerator) EndArray()  { g.close(false) }

func (g *yamlGenerator) open(n *yaml.Node, object bool) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.beforeValue(); err != nil {
		g.err = err
		return
	}
	g.nest.push(object)
	g.attach(n)
	g.stack = append(g.stack, n)
}

func (g *yamlGenerator) close(object bool) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.pop(object); err != nil {
		g.err = err
		return
	}
	g.stack = g.stack[:len(g.stack)-1]
}

func (g *yamlGenerator) FieldName(name string) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.beforeName(); err != nil {
		g.err = err
		return
	}
	g.attach(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
}

func (g *yamlGenerator) Value(v any) {
	if g.err != nil {
		return
	}
	v, err := normalizeScalar(v)
	if err != nil {
		g.err = err
		return
	}
	if _, err = g.nest.beforeValue(); err != nil {
		g.err = err
		return
	}
	g.attach(yamlScalarNode(v))
	g.nest.scalarDone()
}

func yamlScalarNode(v any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch x := v.(type) {
	case nil:
		n.Tag, n.Value = "!!null", "null"
	case bool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(x)
	case string:
		n.Tag, n.Value = "!!str", x
	case int64:
		n.Tag, n.Value = "!!int", strconv.FormatInt(x, 10)
	case uint64:
		n.Tag, n.Value = "!!int", strconv.FormatUint(x, 10)
	case float64:
		n.Tag, n.Value = "!!float", yamlFloat(x)
	case json.Number:
		if _, err := x.Int64(); err == nil {
			n.Tag = "!!int"
		} else {
			n.Tag = "!!float"
		}
		n.Value = x.String()
	case []byte:
		n.Tag, n.Value = "!!binary", base64.StdEncoding.EncodeToString(x)
	case time.Time:
		n.Tag, n.Value = "!!timestamp", x.UTC().Format(time.RFC3339Nano)
	}
	return n
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func (g *yamlGenerator) Close() error {
	if g.err != nil {
		return g.err
	}
	if err := g.nest.done(); err != nil {
		g.err = err
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{g.root}}); err != nil {
		g.err = fmt.Errorf("encode yaml: %w", err)
		return g.err
	}
	if err := enc.Close(); err != nil {
		g.err = fmt.Errorf("encode yaml: %w", err)
		return g.err
	}
	if _, err := g.w.Write(buf.Bytes()); err != nil {
		g.err = fmt.Errorf("write yaml: %w", err)
		return g.err
	}
	return nil
}
