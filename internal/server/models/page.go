package models

import "math"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// ListQuery is the common shape of admin list requests.
type ListQuery struct {
	Search    string
	Page      int
	Limit     int
	WantCount bool

	// Plant-only filters.
	SystemID *int64
	Status   string
}

// maxOffset bounds the row offset so it always fits a PostgreSQL integer.
const maxOffset = math.MaxInt32

// Normalize clamps Limit to [1, MaxPageLimit] (0 means the default) and Page
// to [1, last page whose offset fits maxOffset].
func (q ListQuery) Normalize() ListQuery {
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	q.Limit = min(max(q.Limit, 1), MaxPageLimit)
	q.Page = min(max(q.Page, 1), maxOffset/q.Limit+1)
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListResult holds one page of items. Count is nil when the caller opted out
// of counting.
type ListResult[T any] struct {
	Items []T
	Count *int
}
