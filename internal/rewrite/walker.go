package rewrite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/index"
	"github.com/kailas-cloud/rangedex/internal/queryparser"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

const matchAllName = "match_all"

// walker streams one request from p to g, rewriting range constructs found
// directly under a "query" or "filter" field. Any field named "query" or
// "filter" is treated as a clause, wherever it appears.
type walker struct {
	ctx     context.Context
	r       *Rewriter
	index   string
	snap    index.Snapshot
	parsers QueryParsingService
	p       xcontent.Parser
	g       xcontent.Generator
}

// walkCurrent copies the value at the parser's current event, descending into
// containers.
func (w *walker) walkCurrent() error {
	switch w.p.Current() {
	case xcontent.StartArray:
		w.g.StartArray()
		for {
			tok, err := xcontent.Expect(w.p)
			if err != nil {
				return err
			}
			if tok == xcontent.EndArray {
				break
			}
			if err := w.walkCurrent(); err != nil {
				return err
			}
		}
		w.g.EndArray()
	case xcontent.StartObject:
		w.g.StartObject()
		if err := w.walkMembers(); err != nil {
			return err
		}
		w.g.EndObject()
	case xcontent.Value:
		return xcontent.CopyCurrentEvent(w.g, w.p)
	default:
		return fmt.Errorf("%w: unexpected %s", domain.ErrUnexpectedShape, w.p.Current())
	}
	return w.g.Err()
}

// walkMembers copies object members up to and including the parser's
// EndObject, without emitting the closing event itself.
func (w *walker) walkMembers() error {
	for {
		tok, err := xcontent.Expect(w.p)
		if err != nil {
			return err
		}
		switch tok {
		case xcontent.EndObject:
			return nil
		case xcontent.FieldName:
		default:
			return fmt.Errorf("%w: expected field name, found %s", domain.ErrUnexpectedShape, tok)
		}

		name := w.p.Name()
		w.g.FieldName(name)
		switch name {
		case string(clauseQuery):
			err = w.walkClause(clauseQuery)
		case string(clauseFilter):
			err = w.walkClause(clauseFilter)
		default:
			if _, err = xcontent.Expect(w.p); err == nil {
				err = w.walkCurrent()
			}
		}
		if err != nil {
			return err
		}
	}
}

// walkClause handles the value of a "query" or "filter" field.
func (w *walker) walkClause(kind clause) error {
	tok, err := xcontent.Expect(w.p)
	if err != nil {
		return err
	}
	if tok != xcontent.StartObject {
		if kind == clauseFilter {
			return fmt.Errorf("%w: [filter] expects an object, found %s", domain.ErrMalformedStructure, tok)
		}
		// query shorthand such as a query string
		return xcontent.CopyCurrentStructure(w.g, w.p)
	}

	w.g.StartObject()
	tok, err = xcontent.Expect(w.p)
	if err != nil {
		return err
	}
	switch {
	case tok == xcontent.EndObject:
		w.g.EndObject()
		return w.g.Err()
	case tok != xcontent.FieldName:
		return fmt.Errorf("%w: expected field name in [%s], found %s", domain.ErrUnexpectedShape, kind, tok)
	case w.p.Name() == queryparser.RangeName:
		err = w.rewriteRange(kind)
	default:
		w.g.FieldName(w.p.Name())
		if _, err = xcontent.Expect(w.p); err == nil {
			err = w.walkCurrent()
		}
	}
	if err != nil {
		return err
	}

	if err := w.walkMembers(); err != nil {
		return err
	}
	w.g.EndObject()
	return w.g.Err()
}

// rewriteRange captures the value of a "range" member, analyzes it and emits
// either match_all or the captured original.
func (w *walker) rewriteRange(kind clause) error {
	tok, err := xcontent.Expect(w.p)
	if err != nil {
		return err
	}
	if tok != xcontent.StartObject {
		return fmt.Errorf("%w: [range] %s malformed, missing start_object", domain.ErrMalformedStructure, kind)
	}

	c, err := capture(w.p)
	if err != nil {
		return err
	}
	a, err := w.analyze(w.ctx, kind, c)
	w.r.observeScanned(w.index, a.scanned)
	if err != nil {
		return err
	}
	w.r.observeConstruct(w.index, kind, a.outcome)
	w.r.logger.Debug("range construct analyzed",
		zap.String("index", w.index),
		zap.String("context", string(kind)),
		zap.Stringer("construct", a.construct),
		zap.Stringer("kind", a.construct.Kind),
		zap.Stringer("extent", a.extent),
		zap.Stringer("outcome", a.outcome),
	)

	if a.outcome == ReplaceWithMatchAll {
		w.g.FieldName(matchAllName)
		w.g.StartObject()
		w.g.EndObject()
		return w.g.Err()
	}
	w.g.FieldName(queryparser.RangeName)
	return c.replay(w.g)
}
