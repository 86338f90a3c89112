package rangedex

import "github.com/kailas-cloud/rangedex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrIndexNotFound      = domain.ErrIndexNotFound
	ErrSegmentNotFound    = domain.ErrSegmentNotFound
	ErrInvalidDocument    = domain.ErrInvalidDocument
	ErrRewriteFailed      = domain.ErrRewriteFailed
	ErrDecodeFailure      = domain.ErrDecodeFailure
	ErrMalformedStructure = domain.ErrMalformedStructure
	ErrUnexpectedShape    = domain.ErrUnexpectedShape
	ErrQueryParsing       = domain.ErrQueryParsing
)
