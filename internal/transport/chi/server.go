package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rangedex/internal/domain"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	logpkg "github.com/kailas-cloud/rangedex/internal/logger"
	"github.com/kailas-cloud/rangedex/internal/transport/api"
	healthuc "github.com/kailas-cloud/rangedex/internal/usecase/health"
	rewriteuc "github.com/kailas-cloud/rangedex/internal/usecase/rewrite"
	segmentuc "github.com/kailas-cloud/rangedex/internal/usecase/segment"
)

// EncodingHeader names the encoding family of a rewritten body.
const EncodingHeader = "X-Rewrite-Encoding"

const defaultMaxBodyBytes = 10 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements api.ServerInterface.
type Server struct {
	rewrite       *rewriteuc.Service
	segments      *segmentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes bounds decoded request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates an HTTP API server.
func NewServer(
	rewrite *rewriteuc.Service,
	segments *segmentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		rewrite:      rewrite,
		segments:     segments,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, api.ErrorResponseCodeIndexNotFound),
		sentinelHandler(domain.ErrSegmentNotFound, http.StatusNotFound, api.ErrorResponseCodeSegmentNotFound),
		detailHandler(domain.ErrInvalidDocument, http.StatusBadRequest, api.ErrorResponseCodeInvalidDocument),
		queryParsingHandler,
		rewriteInputHandler,
	}
	return s
}

// RewriteQuery handles POST /indexes/{index}/_rewrite.
func (s *Server) RewriteQuery(w http.ResponseWriter, r *http.Request, index api.IndexName) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	res, err := s.rewrite.Rewrite(r.Context(), index, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.Encoding.MediaType())
	w.Header().Set(EncodingHeader, res.Encoding.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}

// AddSegment handles POST /indexes/{index}/segments.
func (s *Server) AddSegment(w http.ResponseWriter, r *http.Request, index api.IndexName) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var docs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&docs); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest,
			"Invalid request body: expected a JSON array of documents")
		return
	}

	info, err := s.segments.Add(r.Context(), index, docs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, segmentToAPI(info))
}

// ListSegments handles GET /indexes/{index}/segments.
func (s *Server) ListSegments(w http.ResponseWriter, r *http.Request, index api.IndexName) {
	infos, err := s.segments.List(r.Context(), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]api.Segment, len(infos))
	for i, info := range infos {
		items[i] = segmentToAPI(info)
	}
	writeJSON(w, http.StatusOK, api.SegmentListResponse{Items: items})
}

// DropSegment handles DELETE /indexes/{index}/segments/{id}.
func (s *Server) DropSegment(w http.ResponseWriter, r *http.Request, index api.IndexName, id api.SegmentID) {
	if err := s.segments.Drop(r.Context(), index, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetExtent handles GET /indexes/{index}/fields/{field}/extent.
func (s *Server) GetExtent(w http.ResponseWriter, r *http.Request, index api.IndexName, field api.FieldName) {
	ext, err := s.segments.Extent(r.Context(), index, field)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ExtentResponse{Field: field, Min: ext.Min, Max: ext.Max})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]api.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = api.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status:  api.HealthResponseStatus(report.Status),
		Checks:  checks,
		Indexes: report.Indexes,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := readBody(r, s.maxBodyBytes)
	switch {
	case err == nil:
		return body, true
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, api.ErrorResponseCodePayloadTooLarge, err.Error())
	case errors.Is(err, errUnsupportedEncoding):
		writeError(w, http.StatusUnsupportedMediaType, api.ErrorResponseCodeUnsupportedEncoding, err.Error())
	default:
		logpkg.FromContextOr(r.Context(), s.logger).Warn("read request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "unreadable request body")
	}
	return nil, false
}

func segmentToAPI(info domseg.Info) api.Segment {
	return api.Segment{
		ID:        info.ID(),
		Docs:      info.Docs(),
		CreatedAt: time.UnixMilli(info.CreatedAt()).UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler answers with the sentinel's own text, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailHandler answers with the full message. Only for errors built from caller input.
func detailHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func queryParsingHandler(w http.ResponseWriter, err error) bool {
	var qpe *domain.QueryParsingError
	if !errors.As(err, &qpe) {
		return false
	}
	writeError(w, http.StatusBadRequest, api.ErrorResponseCodeQueryParsing, qpe.Error())
	return true
}

// rewriteInputHandler maps rewrite failures caused by the request body to 400.
// Failures from the segment store fall through to 500.
func rewriteInputHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrRewriteFailed) {
		return false
	}
	for _, cause := range []error{domain.ErrDecodeFailure, domain.ErrMalformedStructure, domain.ErrUnexpectedShape} {
		if errors.Is(err, cause) {
			writeError(w, http.StatusBadRequest, api.ErrorResponseCodeRewriteFailed,
				domain.ErrRewriteFailed.Error()+": "+cause.Error())
			return true
		}
	}
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}
