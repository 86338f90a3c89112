package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	domseg "github.com/kailas-cloud/rangedex/internal/domain/segment"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/index/memory"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
	corerw "github.com/kailas-cloud/rangedex/internal/rewrite"
	"github.com/kailas-cloud/rangedex/internal/transport/api"
	healthuc "github.com/kailas-cloud/rangedex/internal/usecase/health"
	rewriteuc "github.com/kailas-cloud/rangedex/internal/usecase/rewrite"
	segmentuc "github.com/kailas-cloud/rangedex/internal/usecase/segment"
)

// failingRepo is a segment repository whose snapshots cannot be read.
type failingRepo struct {
	*memory.Store
}

func (f failingRepo) Snapshot(_ context.Context, _ string) (index.Snapshot, error) {
	return nil, errors.New("connection reset")
}

type testEnv struct {
	store   *memory.Store
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, memory.NewStore(), nil, opts...)
}

func newTestEnvWithRepo(t *testing.T, store *memory.Store, repo segmentuc.Repository, opts ...Option) *testEnv {
	t.Helper()
	m, err := mapping.New(map[string]string{"age": "long", "name": "keyword"})
	if err != nil {
		t.Fatal(err)
	}
	registry := queryparser.NewRegistry(map[string]mapping.Mappings{"people": m})
	if repo == nil {
		repo = store
	}

	segments := segmentuc.New(repo, registry)
	rewrites := rewriteuc.New(corerw.New(zap.NewNop()), registry, segments)
	health := healthuc.New(store, registry)
	server := NewServer(rewrites, segments, health, zap.NewNop(), opts...)

	r := chi.NewRouter()
	api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, err.Error())
		},
	})
	return &testEnv{store: store, handler: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) seed(t *testing.T, id string, ages ...int64) {
	t.Helper()
	info, err := domseg.New(id, len(ages), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.store.Create(context.Background(), "people", info, domseg.Terms{"age": ages}); err != nil {
		t.Fatal(err)
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Rewrite ---

func TestRewriteQuery(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", 20, 40)

	rr := env.do(t, "POST", "/indexes/people/_rewrite",
		[]byte(`{"query":{"range":{"age":{"gte":0}}},"size":5}`), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != `{"query":{"match_all":{}},"size":5}` {
		t.Errorf("unexpected body %s", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if enc := rr.Header().Get(EncodingHeader); enc != "json" {
		t.Errorf("unexpected encoding header %q", enc)
	}
}

func TestRewriteQuery_YAML(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", 20, 40)

	rr := env.do(t, "POST", "/indexes/people/_rewrite",
		[]byte("---\nquery:\n  range:\n    age:\n      gte: 30\n"), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "gte: 30") {
		t.Errorf("expected range to be kept, got %s", rr.Body.String())
	}
}

func TestRewriteQuery_CompressedBodies(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "a", 20, 40)
	body := []byte(`{"query":{"range":{"age":{"lte":100}}}}`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(body)
	_ = gw.Close()

	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zs := zw.EncodeAll(body, nil)
	_ = zw.Close()

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gz.Bytes()},
		{"zstd", zs},
		{"identity", body},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			rr := env.do(t, "POST", "/indexes/people/_rewrite", tt.payload,
				map[string]string{"Content-Encoding": tt.encoding})
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if got := rr.Body.String(); got != `{"query":{"match_all":{}}}` {
				t.Errorf("unexpected body %s", got)
			}
		})
	}
}

func TestRewriteQuery_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		headers  map[string]string
		status   int
		code     api.ErrorResponseCode
		contains string
	}{
		{
			name: "unknown index", path: "/indexes/ghosts/_rewrite", body: `{}`,
			status: http.StatusNotFound, code: api.ErrorResponseCodeIndexNotFound,
		},
		{
			name: "undecodable body", path: "/indexes/people/_rewrite", body: `{"query":`,
			status: http.StatusBadRequest, code: api.ErrorResponseCodeRewriteFailed, contains: "decode failure",
		},
		{
			name: "filter not an object", path: "/indexes/people/_rewrite", body: `{"filter":[1]}`,
			status: http.StatusBadRequest, code: api.ErrorResponseCodeRewriteFailed, contains: "malformed structure",
		},
		{
			name: "bad range bound", path: "/indexes/people/_rewrite", body: `{"query":{"range":{"age":{"gte":"old"}}}}`,
			status: http.StatusBadRequest, code: api.ErrorResponseCodeQueryParsing, contains: "[people]",
		},
		{
			name: "unsupported content encoding", path: "/indexes/people/_rewrite", body: `{}`,
			headers: map[string]string{"Content-Encoding": "br"},
			status:  http.StatusUnsupportedMediaType, code: api.ErrorResponseCodeUnsupportedEncoding,
		},
		{
			name: "corrupt gzip", path: "/indexes/people/_rewrite", body: `not gzip`,
			headers: map[string]string{"Content-Encoding": "gzip"},
			status:  http.StatusBadRequest, code: api.ErrorResponseCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(t, "POST", tt.path, []byte(tt.body), tt.headers)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
			if !strings.Contains(resp.Message, tt.contains) {
				t.Errorf("expected message to contain %q, got %q", tt.contains, resp.Message)
			}
		})
	}
}

func TestRewriteQuery_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, WithMaxBodyBytes(16))
	rr := env.do(t, "POST", "/indexes/people/_rewrite",
		[]byte(`{"query":{"match_all":{}}}`), nil)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != api.ErrorResponseCodePayloadTooLarge {
		t.Errorf("unexpected code %s", resp.Code)
	}
}

func TestRewriteQuery_StoreFailureIsInternal(t *testing.T) {
	store := memory.NewStore()
	env := newTestEnvWithRepo(t, store, failingRepo{store})
	rr := env.do(t, "POST", "/indexes/people/_rewrite", []byte(`{"query":{"match_all":{}}}`), nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Message != "internal error" {
		t.Errorf("internal details leaked: %q", resp.Message)
	}
}

// --- Segments ---

func TestSegmentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/indexes/people/segments",
		[]byte(`[{"age":31,"name":"ann"},{"age":"45"}]`), nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var seg api.Segment
	if err := json.NewDecoder(rr.Body).Decode(&seg); err != nil {
		t.Fatal(err)
	}
	if seg.ID == "" || seg.Docs != 2 {
		t.Fatalf("unexpected segment %+v", seg)
	}

	rr = env.do(t, "GET", "/indexes/people/segments", nil, nil)
	var list api.SegmentListResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != seg.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	rr = env.do(t, "GET", "/indexes/people/fields/age/extent", nil, nil)
	if got := strings.TrimSpace(rr.Body.String()); got != `{"field":"age","min":31,"max":45}` {
		t.Errorf("unexpected extent %s", got)
	}

	rr = env.do(t, "DELETE", fmt.Sprintf("/indexes/people/segments/%s", seg.ID), nil, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = env.do(t, "GET", "/indexes/people/fields/age/extent", nil, nil)
	if got := strings.TrimSpace(rr.Body.String()); got != `{"field":"age","min":null,"max":null}` {
		t.Errorf("unexpected extent after drop %s", got)
	}

	rr = env.do(t, "DELETE", fmt.Sprintf("/indexes/people/segments/%s", seg.ID), nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != api.ErrorResponseCodeSegmentNotFound {
		t.Errorf("unexpected code %s", resp.Code)
	}
}

func TestAddSegment_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   api.ErrorResponseCode
	}{
		{"not an array", `{"age":1}`, http.StatusBadRequest, api.ErrorResponseCodeBadRequest},
		{"empty array", `[]`, http.StatusBadRequest, api.ErrorResponseCodeInvalidDocument},
		{"fractional value", `[{"age":1.5}]`, http.StatusBadRequest, api.ErrorResponseCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(t, "POST", "/indexes/people/segments", []byte(tt.body), nil)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if resp := decodeError(t, rr); resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp api.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Indexes != 1 || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestHandleDomainError_Unknown(t *testing.T) {
	s := NewServer(nil, nil, nil, zap.NewNop())
	rr := httptest.NewRecorder()
	s.handleDomainError(rr, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("wrap: %w", domain.ErrRewriteFailed))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}
