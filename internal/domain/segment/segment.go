// Package segment describes sealed, immutable units of indexed documents.
package segment

import (
	"fmt"
	"regexp"
	"sort"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Info is the metadata of one sealed segment.
type Info struct {
	id        string
	docs      int
	createdAt int64
}

// New validates and creates segment metadata. createdAt is unix millis.
func New(id string, docs int, createdAt int64) (Info, error) {
	if id == "" {
		return Info{}, fmt.Errorf("segment id is required")
	}
	if len(id) > 64 || !idRegex.MatchString(id) {
		return Info{}, fmt.Errorf("invalid segment id %q", id)
	}
	if docs <= 0 {
		return Info{}, fmt.Errorf("segment must hold at least one document")
	}
	return Info{id: id, docs: docs, createdAt: createdAt}, nil
}

// Reconstruct hydrates Info from storage without validation.
func Reconstruct(id string, docs int, createdAt int64) Info {
	return Info{id: id, docs: docs, createdAt: createdAt}
}

// ID returns the segment id.
func (i Info) ID() string { return i.id }

// Docs returns the number of documents sealed into the segment.
func (i Info) Docs() int { return i.docs }

// CreatedAt returns the seal time in unix millis.
func (i Info) CreatedAt() int64 { return i.createdAt }

// Terms maps an integer field to the distinct values indexed for it.
type Terms map[string][]int64

// Add records v for field.
func (t Terms) Add(field string, v int64) {
	t[field] = append(t[field], v)
}

// Compact sorts and de-duplicates every field's values in place.
func (t Terms) Compact() {
	for f, vals := range t {
		sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
		out := vals[:0]
		for i, v := range vals {
			if i == 0 || v != vals[i-1] {
				out = append(out, v)
			}
		}
		t[f] = out
	}
}

// Fields returns the field names, sorted.
func (t Terms) Fields() []string {
	out := make([]string, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
