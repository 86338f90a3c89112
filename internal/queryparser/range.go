package queryparser

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/kailas-cloud/rangedex/internal/domain"
	"github.com/kailas-cloud/rangedex/internal/domain/mapping"
	"github.com/kailas-cloud/rangedex/internal/domain/search/rangeq"
	"github.com/kailas-cloud/rangedex/internal/xcontent"
)

// Filter execution modes.
const (
	ExecutionIndex     = "index"
	ExecutionFieldData = "fielddata"
)

type rangeSpec struct {
	kind   string // "query" or "filter"
	field  string
	from   any
	to     any
	hasLo  bool
	hasHi  bool
	inclLo bool
	inclHi bool
	boost  float64
	name   string
	exec   string
}

// ParseRangeQuery parses the body of a range query. The context's parser must
// be positioned on the construct's opening StartObject; on success it is left
// on the matching EndObject.
func (s *Service) ParseRangeQuery(pc *ParseContext) (rangeq.Construct, error) {
	rs, err := parseRange(pc, "query")
	if err != nil {
		return rangeq.Construct{}, err
	}
	return rs.construct(pc)
}

// ParseRangeFilter parses the body of a range filter. It accepts the query
// parameters plus _cache, _cache_key and execution.
func (s *Service) ParseRangeFilter(pc *ParseContext) (rangeq.Construct, error) {
	rs, err := parseRange(pc, "filter")
	if err != nil {
		return rangeq.Construct{}, err
	}
	c, err := rs.construct(pc)
	if err != nil {
		return rangeq.Construct{}, err
	}
	if rs.exec == ExecutionFieldData && c.Kind == rangeq.KindLong {
		c.Kind = rangeq.KindLongFieldData
	}
	return c, nil
}

func parseRange(pc *ParseContext, kind string) (*rangeSpec, error) {
	p := pc.Parser()
	if p == nil || p.Current() != xcontent.StartObject {
		return nil, domain.NewQueryParsing(pc.Index(), "[range] %s malformed, missing start_object", kind)
	}

	rs := &rangeSpec{kind: kind, inclLo: true, inclHi: true, boost: 1, exec: ExecutionIndex}
	var current string
	for {
		tok, err := xcontent.Expect(p)
		if err != nil {
			return nil, err
		}
		switch tok {
		case xcontent.EndObject:
			if rs.field == "" {
				return nil, domain.NewQueryParsing(pc.Index(), "[range] %s no field specified", kind)
			}
			return rs, nil
		case xcontent.FieldName:
			current = p.Name()
		case xcontent.StartObject:
			if rs.field != "" {
				return nil, domain.NewQueryParsing(pc.Index(),
					"[range] %s doesn't support multiple fields, already got [%s] and found [%s]", kind, rs.field, current)
			}
			rs.field = current
			if err := rs.parseParams(pc); err != nil {
				return nil, err
			}
		case xcontent.Value:
			if err := rs.parseTopLevel(pc, current, p.Value()); err != nil {
				return nil, err
			}
		default:
			return nil, domain.NewQueryParsing(pc.Index(), "[range] %s does not support [%s]", kind, current)
		}
	}
}

func (rs *rangeSpec) parseTopLevel(pc *ParseContext, name string, v any) error {
	switch name {
	case "_name":
		s, ok := v.(string)
		if !ok {
			return domain.NewQueryParsing(pc.Index(), "[range] %s [_name] must be a string", rs.kind)
		}
		rs.name = s
		return nil
	}
	if rs.kind == "filter" {
		switch name {
		case "_cache", "_cache_key", "_cacheKey":
			return nil
		case "execution":
			s, _ := v.(string)
			if s != ExecutionIndex && s != ExecutionFieldData {
				return domain.NewQueryParsing(pc.Index(), "[range] filter doesn't support [%v] execution", v)
			}
			rs.exec = s
			return nil
		}
	}
	return domain.NewQueryParsing(pc.Index(), "[range] %s does not support [%s]", rs.kind, name)
}

// parseParams reads the per-field parameter object; the parser is on its StartObject.
func (rs *rangeSpec) parseParams(pc *ParseContext) error {
	p := pc.Parser()
	var current string
	for {
		tok, err := xcontent.Expect(p)
		if err != nil {
			return err
		}
		switch tok {
		case xcontent.EndObject:
			return nil
		case xcontent.FieldName:
			current = p.Name()
			continue
		case xcontent.Value:
		default:
			return domain.NewQueryParsing(pc.Index(), "[range] %s does not support [%s]", rs.kind, current)
		}

		v := p.Value()
		switch current {
		case "from":
			rs.from, rs.hasLo = v, v != nil
		case "to":
			rs.to, rs.hasHi = v, v != nil
		case "include_lower", "includeLower":
			b, err := rs.boolParam(pc, current, v)
			if err != nil {
				return err
			}
			rs.inclLo = b
		case "include_upper", "includeUpper":
			b, err := rs.boolParam(pc, current, v)
			if err != nil {
				return err
			}
			rs.inclHi = b
		case "gt":
			rs.from, rs.hasLo, rs.inclLo = v, v != nil, false
		case "gte", "ge":
			rs.from, rs.hasLo, rs.inclLo = v, v != nil, true
		case "lt":
			rs.to, rs.hasHi, rs.inclHi = v, v != nil, false
		case "lte", "le":
			rs.to, rs.hasHi, rs.inclHi = v, v != nil, true
		case "boost":
			f, ok := toFloat(v)
			if !ok {
				return domain.NewQueryParsing(pc.Index(), "[range] %s [boost] must be a number", rs.kind)
			}
			rs.boost = f
		default:
			return domain.NewQueryParsing(pc.Index(), "[range] %s does not support [%s]", rs.kind, current)
		}
	}
}

func (rs *rangeSpec) boolParam(pc *ParseContext, name string, v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b, nil
		}
	}
	return false, domain.NewQueryParsing(pc.Index(), "[range] %s [%s] must be a boolean", rs.kind, name)
}

func (rs *rangeSpec) construct(pc *ParseContext) (rangeq.Construct, error) {
	f, mapped := pc.Mappings().Lookup(rs.field)

	if mapped && f.FieldType().IsInteger() {
		var lower, upper *int64
		if rs.hasLo {
			v, err := rs.integerBound(pc, f.FieldType(), rs.from)
			if err != nil {
				return rangeq.Construct{}, err
			}
			lower = &v
		}
		if rs.hasHi {
			v, err := rs.integerBound(pc, f.FieldType(), rs.to)
			if err != nil {
				return rangeq.Construct{}, err
			}
			upper = &v
		}
		c, err := rangeq.NewLong(rs.field, lower, upper, rs.inclLo, rs.inclHi)
		if err != nil {
			return rangeq.Construct{}, domain.NewQueryParsing(pc.Index(), "[range] %s %v", rs.kind, err)
		}
		c.Name, c.Boost = rs.name, rs.boost
		return c, nil
	}

	c := rangeq.Construct{
		Kind:         rangeq.KindTerm,
		Field:        rs.field,
		IncludeLower: rs.inclLo,
		IncludeUpper: rs.inclHi,
		Name:         rs.name,
		Boost:        rs.boost,
	}
	if mapped && f.FieldType().IsFloating() {
		c.Kind = rangeq.KindDouble
	}
	if rs.hasLo {
		s := textBound(rs.from)
		c.LowerText = &s
	}
	if rs.hasHi {
		s := textBound(rs.to)
		c.UpperText = &s
	}
	return c, nil
}

// integerBound accepts integral numbers and integer strings within the range of t.
func (rs *rangeSpec) integerBound(pc *ParseContext, t mapping.Type, v any) (int64, error) {
	n, ok := mapping.IntegerOf(v)
	if !ok {
		return 0, domain.NewQueryParsing(pc.Index(),
			"[range] %s bound [%v] of field [%s] is not a valid %s", rs.kind, v, rs.field, t)
	}
	lo, hi := t.Bounds()
	if n < lo || n > hi {
		return 0, domain.NewQueryParsing(pc.Index(),
			"[range] %s bound [%d] of field [%s] is out of range for %s", rs.kind, n, rs.field, t)
	}
	return n, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func textBound(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
