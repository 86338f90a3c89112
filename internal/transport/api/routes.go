package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the HTTP server.
type ServerInterface interface {
	// POST /indexes/{index}/_rewrite
	RewriteQuery(w http.ResponseWriter, r *http.Request, index IndexName)
	// POST /indexes/{index}/segments
	AddSegment(w http.ResponseWriter, r *http.Request, index IndexName)
	// GET /indexes/{index}/segments
	ListSegments(w http.ResponseWriter, r *http.Request, index IndexName)
	// DELETE /indexes/{index}/segments/{id}
	DropSegment(w http.ResponseWriter, r *http.Request, index IndexName, id SegmentID)
	// GET /indexes/{index}/fields/{field}/extent
	GetExtent(w http.ResponseWriter, r *http.Request, index IndexName, field FieldName)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a path parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type wrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func bindPath(r *http.Request, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return &InvalidParamFormatError{ParamName: name, Err: err}
	}
	if *dest == "" {
		return &InvalidParamFormatError{ParamName: name, Err: fmt.Errorf("must not be empty")}
	}
	return nil
}

func (wr *wrapper) withIndex(fn func(w http.ResponseWriter, r *http.Request, index IndexName)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var index IndexName
		if err := bindPath(r, "index", &index); err != nil {
			wr.errorHandlerFunc(w, r, err)
			return
		}
		fn(w, r, index)
	}
}

func (wr *wrapper) dropSegment(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	var id SegmentID
	if err := bindPath(r, "index", &index); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	if err := bindPath(r, "id", &id); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	wr.handler.DropSegment(w, r, index, id)
}

func (wr *wrapper) getExtent(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	var field FieldName
	if err := bindPath(r, "index", &index); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	if err := bindPath(r, "field", &field); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	wr.handler.GetExtent(w, r, index, field)
}

// HandlerWithOptions mounts every route of si on options.BaseRouter.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wr := &wrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Group(func(r chi.Router) {
		r.Post("/indexes/{index}/_rewrite", wr.withIndex(si.RewriteQuery))
		r.Post("/indexes/{index}/segments", wr.withIndex(si.AddSegment))
		r.Get("/indexes/{index}/segments", wr.withIndex(si.ListSegments))
		r.Delete("/indexes/{index}/segments/{id}", wr.dropSegment)
		r.Get("/indexes/{index}/fields/{field}/extent", wr.getExtent)
		r.Get("/health", si.HealthCheck)
		r.Get("/metrics", si.Metrics)
	})
	return r
}
