// Package api holds the HTTP wire types and route table of the rangedex API.
package api

import "time"

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest          ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized        ErrorResponseCode = "unauthorized"
	ErrorResponseCodeIndexNotFound       ErrorResponseCode = "index_not_found"
	ErrorResponseCodeSegmentNotFound     ErrorResponseCode = "segment_not_found"
	ErrorResponseCodeInvalidDocument     ErrorResponseCode = "invalid_document"
	ErrorResponseCodeQueryParsing        ErrorResponseCode = "query_parsing_failed"
	ErrorResponseCodeRewriteFailed       ErrorResponseCode = "rewrite_failed"
	ErrorResponseCodeUnsupportedEncoding ErrorResponseCode = "unsupported_encoding"
	ErrorResponseCodePayloadTooLarge     ErrorResponseCode = "payload_too_large"
	ErrorResponseCodeInternalError       ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// IndexName is the {index} path parameter.
type IndexName = string

// SegmentID is the {id} path parameter.
type SegmentID = string

// FieldName is the {field} path parameter.
type FieldName = string

// Segment describes one sealed segment.
type Segment struct {
	ID        string    `json:"id"`
	Docs      int       `json:"docs"`
	CreatedAt time.Time `json:"created_at"`
}

// SegmentListResponse lists the segments of an index.
type SegmentListResponse struct {
	Items []Segment `json:"items"`
}

// ExtentResponse is the global value range of a field. Min and Max are null
// when no segment holds the field.
type ExtentResponse struct {
	Field string `json:"field"`
	Min   *int64 `json:"min"`
	Max   *int64 `json:"max"`
}

// HealthResponseStatus is the aggregated status.
type HealthResponseStatus string

// HealthResponseChecks is a per-component result.
type HealthResponseChecks string

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthResponseStatus            `json:"status"`
	Checks  map[string]HealthResponseChecks `json:"checks"`
	Indexes int                             `json:"indexes"`
}
