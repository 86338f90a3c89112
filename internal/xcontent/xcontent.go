// Package xcontent reads and writes structured request bodies as a stream of
// structural events, independent of the encoding family they arrive in.
package xcontent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/kailas-cloud/rangedex/internal/domain"
)

// Type is a content encoding family.
type Type int

const (
	// JSON is RFC 8259 JSON.
	JSON Type = iota
	// YAML is a YAML 1.2 document introduced by "---".
	YAML
	// MsgPack is MessagePack.
	MsgPack
)

func (t Type) String() string {
	switch t {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case MsgPack:
		return "msgpack"
	default:
		return fmt.Sprintf("xcontent(%d)", int(t))
	}
}

// MediaType returns the HTTP content type for t.
func (t Type) MediaType() string {
	switch t {
	case YAML:
		return "application/yaml"
	case MsgPack:
		return "application/msgpack"
	default:
		return "application/json"
	}
}

// Detect guesses the encoding family from the leading bytes of data.
func Detect(data []byte) (Type, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty content", domain.ErrDecodeFailure)
	}
	if isMsgPackContainer(data[0]) {
		return MsgPack, nil
	}

	rest := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	rest = bytes.TrimLeft(rest, " \t\r\n")
	switch {
	case len(rest) == 0:
		return 0, fmt.Errorf("%w: blank content", domain.ErrDecodeFailure)
	case rest[0] == '{' || rest[0] == '[':
		return JSON, nil
	case bytes.HasPrefix(rest, []byte("---")):
		return YAML, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized content starting with %q", domain.ErrDecodeFailure, rest[:min(len(rest), 8)])
	}
}

// isMsgPackContainer matches fixmap, map16/32, fixarray and array16/32 codes.
func isMsgPackContainer(c byte) bool {
	return (c >= 0x80 && c <= 0x9f) || c == 0xdc || c == 0xdd || c == 0xde || c == 0xdf
}

// MaxDepth bounds container nesting for every parser, the same limit
// encoding/json applies to its own scanner.
const MaxDepth = 10000

func depthExceeded(t Type) error {
	return fmt.Errorf("%w: %s nesting exceeds %d levels", domain.ErrDecodeFailure, t, MaxDepth)
}

// Token is one structural event.
type Token int

const (
	// TokenNone is the state before the first call to Next.
	TokenNone Token = iota
	StartObject
	EndObject
	StartArray
	EndArray
	FieldName
	Value
)

func (t Token) String() string {
	switch t {
	case TokenNone:
		return "none"
	case StartObject:
		return "start_object"
	case EndObject:
		return "end_object"
	case StartArray:
		return "start_array"
	case EndArray:
		return "end_array"
	case FieldName:
		return "field_name"
	case Value:
		return "value"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Parser is a forward-only reader of structural events.
//
// Next returns io.EOF once the single root value has been fully consumed and
// no content follows it. Value returns one of: nil, bool, string, int64,
// uint64, float64, json.Number, []byte or time.Time. time.Time comes from
// MessagePack timestamps and is written back as a timestamp by the MessagePack
// and YAML generators; JSON has no timestamp type and writes an RFC 3339 string.
type Parser interface {
	Next() (Token, error)
	Current() Token
	Name() string
	Value() any
	Type() Type
}

// Generator writes structural events in one encoding family.
//
// Errors are sticky: the first failure is kept and reported by Err and Close,
// and every later call is a no-op.
type Generator interface {
	StartObject()
	EndObject()
	StartArray()
	EndArray()
	FieldName(name string)
	Value(v any)
	Err() error
	Close() error
	Type() Type
}

// NewParser opens a parser over data.
func NewParser(t Type, data []byte) (Parser, error) {
	switch t {
	case JSON:
		return newJSONParser(data), nil
	case YAML:
		return newYAMLParser(data)
	case MsgPack:
		return newMsgPackParser(data), nil
	default:
		return nil, fmt.Errorf("%w: unsupported content type %s", domain.ErrDecodeFailure, t)
	}
}

// NewGenerator creates a generator writing to w. Output is complete only after Close.
func NewGenerator(t Type, w io.Writer) Generator {
	switch t {
	case YAML:
		return newYAMLGenerator(w)
	case MsgPack:
		return newMsgPackGenerator(w)
	default:
		return newJSONGenerator(w)
	}
}

// normalizeScalar maps decoder output onto the documented Value set.
func normalizeScalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, json.Number, []byte, time.Time:
		return x, nil
	case uint64:
		return normalizeUint(x), nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return normalizeUint(uint64(x)), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: unsupported scalar %T", domain.ErrDecodeFailure, v)
	}
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

// structuralError reports generator misuse.
func structuralError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrUnexpectedShape, fmt.Sprintf(format, args...))
}
