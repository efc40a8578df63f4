package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Limits bounds the page size a client may ask for.
type Limits struct {
	Default int
	Max     int
}

// EventLimits is used by the event listing.
var EventLimits = Limits{Default: 15, Max: 30}

// Pagination is parsed from ?page=&limit= and, once the total is known,
// carries the metadata returned alongside a page.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination reads page and limit from q. Missing or invalid values
// fall back to page 1 and lim.Default; limit is capped at lim.Max and page
// at the largest value whose offset still fits in an int.
func ParsePagination(q url.Values, lim Limits) Pagination {
	p := Pagination{Limit: lim.Default, Page: 1}

	if n, ok := positiveInt(q.Get("limit")); ok {
		p.Limit = min(n, lim.Max)
	}
	if n, ok := positiveInt(q.Get("page")); ok {
		p.Page = n
	}
	if p.Limit > 0 {
		p.Page = min(p.Page, math.MaxInt/p.Limit)
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ComputeMeta fills in the totals once the row count is known.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	p.HasPrev = p.Page > 1
	p.HasNext = p.Page*p.Limit < total
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
