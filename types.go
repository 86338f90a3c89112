package rangedex

import "time"

// Segment describes one sealed segment.
type Segment struct {
	ID        string    `json:"id"`
	Docs      int       `json:"docs"`
	CreatedAt time.Time `json:"created_at"`
}

// Extent is the global value range of a field. Min and Max are nil when no
// segment holds the field.
type Extent struct {
	Field string `json:"field"`
	Min   *int64 `json:"min"`
	Max   *int64 `json:"max"`
}
