// Package queryparser turns the "range" query and "range" filter of a search
// request into rangeq.Construct values, resolving field types against the
// mappings of one index.
package queryparser

import (
	"sort"

	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// RangeName is the name of both the range query and the range filter.
const RangeName = "range"

// ParseContext carries the per-parse state: the index being queried and the
// parser positioned on the construct. It is reset for every parse.
type ParseContext struct {
	index    string
	mappings mapping.Mappings
	parser   xcontent.Parser
}

// Index returns the name of the index the context is keyed to.
func (pc *ParseContext) Index() string { return pc.index }

// Mappings returns the field mappings of the index.
func (pc *ParseContext) Mappings() mapping.Mappings { return pc.mappings }

// Reset points the context at a new parser.
func (pc *ParseContext) Reset(p xcontent.Parser) { pc.parser = p }

// Parser returns the current parser.
func (pc *ParseContext) Parser() xcontent.Parser { return pc.parser }

// Service parses range constructs for one index.
type Service struct {
	index    string
	mappings mapping.Mappings
}

// New creates a parsing service for index.
func New(index string, m mapping.Mappings) *Service {
	return &Service{index: index, mappings: m}
}

// Index returns the index name.
func (s *Service) Index() string { return s.index }

// Mappings returns the index mappings.
func (s *Service) Mappings() mapping.Mappings { return s.mappings }

// ParseContext returns a fresh context keyed to the service's index.
func (s *Service) ParseContext() *ParseContext {
	return &ParseContext{index: s.index, mappings: s.mappings}
}

// Registry holds one Service per configured index.
type Registry struct {
	services map[string]*Service
}

// NewRegistry builds a registry from per-index mappings.
func NewRegistry(indexes map[string]mapping.Mappings) *Registry {
	r := &Registry{services: make(map[string]*Service, len(indexes))}
	for name, m := range indexes {
		r.services[name] = New(name, m)
	}
	return r
}

// Lookup returns the service for index.
func (r *Registry) Lookup(index string) (*Service, bool) {
	s, ok := r.services[index]
	return s, ok
}

// Mappings returns the mappings of index.
func (r *Registry) Mappings(index string) (mapping.Mappings, bool) {
	s, ok := r.services[index]
	if !ok {
		return mapping.Mappings{}, false
	}
	return s.mappings, true
}

// Indexes returns the configured index names, sorted.
func (r *Registry) Indexes() []string {
	out := make([]string, 0, len(r.services))
	for name := range r.services {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
