package xcontent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/kailas-cloud/rangedex/internal/domain"
)

type msgpackFrame struct {
	object    bool
	remaining int
	wantKey   bool
}

type msgpackParser struct {
	dec     *msgpack.Decoder
	frames  []msgpackFrame
	started bool
	cur     Token
	name    string
	val     any
}

func newMsgPackParser(data []byte) *msgpackParser {
	return &msgpackParser{dec: msgpack.NewDecoder(bytes.NewReader(data))}
}

func (p *msgpackParser) Type() Type     { return MsgPack }
func (p *msgpackParser) Current() Token { return p.cur }
func (p *msgpackParser) Name() string   { return p.name }
func (p *msgpackParser) Value() any     { return p.val }

func (p *msgpackParser) Next() (Token, error) {
	if !p.started {
		p.started = true
		return p.readValue()
	}
	if len(p.frames) == 0 {
		return p.atRootEnd()
	}

	top := &p.frames[len(p.frames)-1]
	if top.object {
		if !top.wantKey {
			top.wantKey = true
			top.remaining--
			return p.readValue()
		}
		if top.remaining == 0 {
			p.frames = p.frames[:len(p.frames)-1]
			p.cur = EndObject
			return p.cur, nil
		}
		key, err := p.dec.DecodeInterfaceLoose()
		if err != nil {
			return TokenNone, p.decodeErr(err)
		}
		name, ok := key.(string)
		if !ok {
			return TokenNone, fmt.Errorf("%w: msgpack map key of type %T", domain.ErrUnexpectedShape, key)
		}
		top.wantKey = false
		p.name = name
		p.cur = FieldName
		return p.cur, nil
	}

	if top.remaining == 0 {
		p.frames = p.frames[:len(p.frames)-1]
		p.cur = EndArray
		return p.cur, nil
	}
	top.remaining--
	return p.readValue()
}

func (p *msgpackParser) readValue() (Token, error) {
	code, err := p.dec.PeekCode()
	if err != nil {
		return TokenNone, p.decodeErr(err)
	}

	isMap := msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32
	isArray := msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32
	if (isMap || isArray) && len(p.frames) >= MaxDepth {
		return TokenNone, depthExceeded(MsgPack)
	}

	switch {
	case isMap:
		n, err := p.dec.DecodeMapLen()
		if err != nil {
			return TokenNone, p.decodeErr(err)
		}
		p.frames = append(p.frames, msgpackFrame{object: true, remaining: n, wantKey: true})
		p.cur = StartObject
	case isArray:
		n, err := p.dec.DecodeArrayLen()
		if err != nil {
			return TokenNone, p.decodeErr(err)
		}
		p.frames = append(p.frames, msgpackFrame{remaining: n})
		p.cur = StartArray
	default:
		v, err := p.dec.DecodeInterfaceLoose()
		if err != nil {
			return TokenNone, p.decodeErr(err)
		}
		if p.val, err = normalizeScalar(v); err != nil {
			return TokenNone, err
		}
		p.cur = Value
	}
	return p.cur, nil
}

func (p *msgpackParser) atRootEnd() (Token, error) {
	if _, err := p.dec.PeekCode(); err != nil {
		if errors.Is(err, io.EOF) {
			p.cur = TokenNone
			return TokenNone, io.EOF
		}
		return TokenNone, p.decodeErr(err)
	}
	return TokenNone, fmt.Errorf("%w: trailing content after msgpack root value", domain.ErrDecodeFailure)
}

func (p *msgpackParser) decodeErr(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: msgpack: %w", domain.ErrDecodeFailure, err)
}

// msgpackGenerator buffers each open container because msgpack headers carry
// the member count up front.
type msgpackGenerator struct {
	w      io.Writer
	root   bytes.Buffer
	bodies []*bytes.Buffer
	nest   nesting
	err    error
}

func newMsgPackGenerator(w io.Writer) *msgpackGenerator {
	return &msgpackGenerator{w: w}
}

func (g *msgpackGenerator) Type() Type { return MsgPack }
func (g *msgpackGenerator) Err() error { return g.err }

func (g *msgpackGenerator) target() *bytes.Buffer {
	if n := len(g.bodies); n > 0 {
		return g.bodies[n-1]
	}
	return &g.root
}

func (g *msgpackGenerator) StartObject() { g.open(true) }
func (g *msgpackGenerator) StartArray()  { g.open(false) }
func (g *msgpackGenerator) EndObject()   { g.close(true) }
func (g *msgpackGenerator) EndArray()    { g.close(false) }

func (g *msgpackGenerator) open(object bool) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.beforeValue(); err != nil {
		g.err = err
		return
	}
	g.nest.push(object)
	g.bodies = append(g.bodies, new(bytes.Buffer))
}

func (g *msgpackGenerator) close(object bool) {
	if g.err != nil {
		return
	}
	n, err := g.nest.pop(object)
	if err != nil {
		g.err = err
		return
	}
	body := g.bodies[len(g.bodies)-1]
	g.bodies = g.bodies[:len(g.bodies)-1]

	out := g.target()
	enc := msgpack.NewEncoder(out)
	if object {
		err = enc.EncodeMapLen(n)
	} else {
		err = enc.EncodeArrayLen(n)
	}
	if err != nil {
		g.err = fmt.Errorf("encode msgpack header: %w", err)
		return
	}
	out.Write(body.Bytes())
}

func (g *msgpackGenerator) FieldName(name string) {
	if g.err != nil {
		return
	}
	if _, err := g.nest.beforeName(); err != nil {
		g.err = err
		return
	}
	if err := msgpack.NewEncoder(g.target()).EncodeString(name); err != nil {
		g.err = fmt.Errorf("encode msgpack key: %w", err)
	}
}

func (g *msgpackGenerator) Value(v any) {
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

	enc := msgpack.NewEncoder(g.target())
	switch x := v.(type) {
	case nil:
		err = enc.EncodeNil()
	case bool:
		err = enc.EncodeBool(x)
	case string:
		err = enc.EncodeString(x)
	case int64:
		err = enc.EncodeInt(x)
	case uint64:
		err = enc.EncodeUint(x)
	case float64:
		err = enc.EncodeFloat64(x)
	case json.Number:
		if i, perr := x.Int64(); perr == nil {
			err = enc.EncodeInt(i)
		} else if f, perr := x.Float64(); perr == nil {
			err = enc.EncodeFloat64(f)
		} else {
			err = perr
		}
	case []byte:
		err = enc.EncodeBytes(x)
	case time.Time:
		err = enc.EncodeTime(x)
	}
	if err != nil {
		g.err = fmt.Errorf("encode msgpack value: %w", err)
		return
	}
	g.nest.scalarDone()
}

func (g *msgpackGenerator) Close() error {
	if g.err != nil {
		return g.err
	}
	if err := g.nest.done(); err != nil {
		g.err = err
		return err
	}
	if _, err := g.w.Write(g.root.Bytes()); err != nil {
		g.err = fmt.Errorf("write msgpack: %w", err)
		return g.err
	}
	return nil
}
