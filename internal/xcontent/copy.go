package xcontent

import (
	"errors"
	"fmt"
	"io"

	"github.com/kailas-cloud/rangedex/internal/domain"
)

// CopyCurrentEvent writes the parser's current event to g.
func CopyCurrentEvent(g Generator, p Parser) error {
	switch p.Current() {
	case StartObject:
		g.StartObject()
	case EndObject:
		g.EndObject()
	case StartArray:
		g.StartArray()
	case EndArray:
		g.EndArray()
	case FieldName:
		g.FieldName(p.Name())
	case Value:
		g.Value(p.Value())
	default:
		return fmt.Errorf("%w: no current event to copy", domain.ErrUnexpectedShape)
	}
	return g.Err()
}

// CopyCurrentStructure copies the structure starting at the parser's current
// event: a whole object or array, a scalar, or a field name with its value.
// On return the parser is positioned on the last event copied.
func CopyCurrentStructure(g Generator, p Parser) error {
	if p.Current() == FieldName {
		g.FieldName(p.Name())
		if _, err := Expect(p); err != nil {
			return err
		}
	}

	switch p.Current() {
	case StartObject, StartArray:
	case Value:
		return CopyCurrentEvent(g, p)
	default:
		return fmt.Errorf("%w: cannot copy structure at %s", domain.ErrUnexpectedShape, p.Current())
	}

	depth := 0
	for {
		switch p.Current() {
		case StartObject, StartArray:
			depth++
		case EndObject, EndArray:
			depth--
		}
		if err := CopyCurrentEvent(g, p); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
		if _, err := Expect(p); err != nil {
			return err
		}
	}
}

// Expect advances p and treats end of input as an error: used wherever the
// structure read so far is still open.
func Expect(p Parser) (Token, error) {
	tok, err := p.Next()
	if errors.Is(err, io.EOF) {
		return TokenNone, fmt.Errorf("%w: unexpected end of %s content", domain.ErrDecodeFailure, p.Type())
	}
	return tok, err
}
