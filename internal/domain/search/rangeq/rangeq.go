// Package rangeq holds the parsed form of a range query or range filter.
package rangeq

import (
	"fmt"
	"strconv"
)

// Kind classifies a parsed range construct by the type of its target field.
type Kind int

const (
	// KindLong is an integer range answered from the inverted index.
	KindLong Kind = iota
	// KindLongFieldData is an integer range filter executed over field data.
	KindLongFieldData
	// KindDouble is a floating-point range.
	KindDouble
	// KindTerm is a lexicographic range over string terms.
	KindTerm
)

func (k Kind) String() string {
	switch k {
	case KindLong:
		return "long"
	case KindLongFieldData:
		return "long_fielddata"
	case KindDouble:
		return "double"
	case KindTerm:
		return "term"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsInteger reports whether the construct compares single-valued integers.
func (k Kind) IsInteger() bool { return k == KindLong || k == KindLongFieldData }

// Construct is a range query or filter after parsing.
// Lower/Upper are set for integer kinds; LowerText/UpperText for the rest.
// A nil bound is open.
type Construct struct {
	Kind         Kind
	Field        string
	Lower        *int64
	Upper        *int64
	LowerText    *string
	UpperText    *string
	IncludeLower bool
	IncludeUpper bool
	Name         string
	Boost        float64
}

// NewLong creates an integer range construct.
func NewLong(field string, lower, upper *int64, includeLower, includeUpper bool) (Construct, error) {
	if field == "" {
		return Construct{}, fmt.Errorf("range field is required")
	}
	return Construct{
		Kind:         KindLong,
		Field:        field,
		Lower:        lower,
		Upper:        upper,
		IncludeLower: includeLower,
		IncludeUpper: includeUpper,
		Boost:        1,
	}, nil
}

// Unbounded reports whether neither bound is set.
func (c Construct) Unbounded() bool {
	if c.Kind.IsInteger() {
		return c.Lower == nil && c.Upper == nil
	}
	return c.LowerText == nil && c.UpperText == nil
}

func (c Construct) String() string {
	lo, hi := "*", "*"
	if c.Kind.IsInteger() {
		if c.Lower != nil {
			lo = strconv.FormatInt(*c.Lower, 10)
		}
		if c.Upper != nil {
			hi = strconv.FormatInt(*c.Upper, 10)
		}
	} else {
		if c.LowerText != nil {
			lo = *c.LowerText
		}
		if c.UpperText != nil {
			hi = *c.UpperText
		}
	}
	open, closing := "{", "}"
	if c.IncludeLower {
		open = "["
	}
	if c.IncludeUpper {
		closing = "]"
	}
	return fmt.Sprintf("%s:%s%s TO %s%s", c.Field, open, lo, hi, closing)
}
