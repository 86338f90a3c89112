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

	"github.com/kailas-cloud/rangedex/internal/domain"
)

type jsonFrame struct {
	object  bool
	wantKey bool
}

type jsonParser struct {
	dec     *json.Decoder
	frames  []jsonFrame
	started bool
	cur     Token
	name    string
	val     any
}

func newJSONParser(data []byte) *jsonParser {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return &jsonParser{dec: dec}
}

func (p *jsonParser) Type() Type     { return JSON }
func (p *jsonParser) Current() Token { return p.cur }
func (p *jsonParser) Name() string   { return p.name }
func (p *jsonParser) Value() any     { return p.val }

func (p *jsonParser) Next() (Token, error) {
	if p.started && len(p.frames) == 0 {
		return p.atRootEnd()
	}

	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) && !p.started {
			return TokenNone, fmt.Errorf("%w: empty json content", domain.ErrDecodeFailure)
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return TokenNone, fmt.Errorf("%w: json: %w", domain.ErrDecodeFailure, err)
	}
	p.started = true

	switch t := tok.(type) {
	case json.Delim:
		if (t == '{' || t == '[') && len(p.frames) >= MaxDepth {
			return TokenNone, depthExceeded(JSON)
		}
		switch t {
		case '{':
			p.valueConsumed()
			p.frames = append(p.frames, jsonFrame{object: true, wantKey: true})
			p.cur = StartObject
		case '[':
			p.valueConsumed()
			p.frames = append(p.frames, jsonFrame{})
			p.cur = StartArray
		case '}':
			p.frames = p.frames[:len(p.frames)-1]
			p.cur = EndObject
		case ']':
			p.frames = p.frames[:len(p.frames)-1]
			p.cur = EndArray
		}
	case string:
		if n := len(p.frames); n > 0 && p.frames[n-1].object && p.frames[n-1].wantKey {
			p.frames[n-1].wantKey = false
			p.name = t
			p.cur = FieldName
			return p.cur, nil
		}
		p.valueConsumed()
		p.val = t
		p.cur = Value
	default:
		p.valueConsumed()
		p.val = t
		p.cur = Value
	}
	return p.cur, nil
}

// valueConsumed flips the enclosing object back to expecting a key.
func (p *jsonParser) valueConsumed() {
	if n := len(p.frames); n > 0 && p.frames[n-1].object {
		p.frames[n-1].wantKey = true
	}
}

func (p *jsonParser) atRootEnd() (Token, error) {
	if _, err := p.dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			p.cur = TokenNone
			return TokenNone, io.EOF
		}
		return TokenNone, fmt.Errorf("%w: json: %w", domain.ErrDecodeFailure, err)
	}
	return TokenNone, fmt.Errorf("%w: trailing content after json root value", domain.ErrDecodeFailure)
}

type jsonGenerator struct {
	w    io.Writer
	buf  bytes.Buffer
	nest nesting
	err  error
	str  *json.Encoder
	sbuf bytes.Buffer
}

func newJSONGenerator(w io.Writer) *jsonGenerator {
	g := &jsonGenerator{w: w}
	g.str = json.NewEncoder(&g.sbuf)
	g.str.SetEscapeHTML(false)
	return g
}

func (g *jsonGenerator) Type() Type { return JSON }
func (g *jsonGenerator) Err() error { return g.err }

func (g *jsonGenerator) StartObject() { g.open('{', true) }
func (g *jsonGenerator) StartArray()  { g.open('[', false) }
func (g *jsonGenerator) EndObject()   { g.close('}', true) }
func (g *jsonGenerator) EndArray()    { g.close(']', false) }

func (g *jsonGenerator) open(delim byte, object bool) {
	if g.err != nil {
		return
	}
	sep, err := g.nest.beforeValue()
	if err != nil {
		g.err = err
		return
	}
	if sep {
		g.buf.WriteByte(',')
	}
	g.buf.WriteByte(delim)
	g.nest.push(object)
}

func (g *jsonGenerator) close(delim byte, object bool) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.pop(object); err != nil {
		g.err = err
		return
	}
	g.buf.WriteByte(delim)
}

func (g *jsonGenerator) FieldName(name string) {
	if g.err != nil {
		return
	}
	sep, err := g.nest.beforeName()
	if err != nil {
		g.err = err
		return
	}
	if sep {
		g.buf.WriteByte(',')
	}
	g.writeString(name)
	g.buf.WriteByte(':')
}

func (g *jsonGenerator) Value(v any) {
	if g.err != nil {
		return
	}
	v, err := normalizeScalar(v)
	if err != nil {
		g.err = err
		return
	}
	sep, err := g.nest.beforeValue()
	if err != nil {
		g.err = err
		return
	}
	if sep {
		g.buf.WriteByte(',')
	}
	switch x := v.(type) {
	case nil:
		g.buf.WriteString("null")
	case bool:
		g.buf.WriteString(strconv.FormatBool(x))
	case string:
		g.writeString(x)
	case int64:
		g.buf.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		g.buf.WriteString(strconv.FormatUint(x, 10))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			g.err = fmt.Errorf("%w: json cannot represent %v", domain.ErrUnexpectedShape, x)
			return
		}
		g.buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case json.Number:
		g.buf.WriteString(x.String())
	case []byte:
		g.writeString(base64.StdEncoding.EncodeToString(x))
	case time.Time:
		g.writeString(x.UTC().Format(time.RFC3339Nano))
	}
	g.nest.scalarDone()
}

func (g *jsonGenerator) writeString(s string) {
	g.sbuf.Reset()
	_ = g.str.Encode(s) // strings always encode
	g.buf.Write(bytes.TrimSuffix(g.sbuf.Bytes(), []byte{'\n'}))
}

func (g *jsonGenerator) Close() error {
	if g.err != nil {
		return g.err
	}
	if err := g.nest.done(); err != nil {
		g.err = err
		return err
	}
	if _, err := g.w.Write(g.buf.Bytes()); err != nil {
		g.err = fmt.Errorf("write json: %w", err)
		return g.err
	}
	return nil
}
