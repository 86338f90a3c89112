package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound signals a request against an index with no mappings.
	ErrIndexNotFound = errors.New("index not found")
	// ErrSegmentNotFound signals a missing segment.
	ErrSegmentNotFound = errors.New("segment not found")
	// ErrInvalidDocument signals a document that cannot be sealed into a segment.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDecodeFailure signals source bytes that no content encoding can decode.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrMalformedStructure signals a missing opening token where an object is required.
	ErrMalformedStructure = errors.New("malformed structure")
	// ErrUnexpectedShape signals any other structural assertion violated while walking.
	ErrUnexpectedShape = errors.New("unexpected shape")
	// ErrQueryParsing signals a range construct the query parser rejected.
	ErrQueryParsing = errors.New("query parsing failed")
	// ErrRewriteFailed wraps every failure surfaced by the rewriter boundary.
	ErrRewriteFailed = errors.New("rewrite failed")
)

// QueryParsingError carries the index and construct name of a parse failure.
type QueryParsingError struct {
	Index string
	Msg   string
}

func (e *QueryParsingError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Index, e.Msg)
}

func (e *QueryParsingError) Unwrap() error { return ErrQueryParsing }

// NewQueryParsing creates a query parsing error for index.
func NewQueryParsing(index, format string, args ...any) error {
	return &QueryParsingError{Index: index, Msg: fmt.Sprintf(format, args...)}
}
