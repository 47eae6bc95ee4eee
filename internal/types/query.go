package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted on the command line and
// sent in the search date filter.
const DateLayout = "01/02/2006"

// SearchQuery is one search run. It is immutable once built.
type SearchQuery struct {
	Keyword    string
	TargetDate time.Time
	PageSize   int
	MaxPages   int
}

// NewSearchQuery validates and builds a SearchQuery. date may be empty, in
// which case no date filter is applied.
func NewSearchQuery(keyword, date string, pageSize, maxPages int) (SearchQuery, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return SearchQuery{}, fmt.Errorf("keyword must not be empty")
	}
	if pageSize < 1 {
		return SearchQuery{}, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}
	if maxPages < 1 {
		return SearchQuery{}, fmt.Errorf("max pages must be >= 1, got %d", maxPages)
	}

	q := SearchQuery{Keyword: keyword, PageSize: pageSize, MaxPages: maxPages}
	if date = strings.TrimSpace(date); date != "" {
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			return SearchQuery{}, fmt.Errorf("date %q must be MM/DD/YYYY: %w", date, err)
		}
		q.TargetDate = t
	}
	return q, nil
}

// HasDate reports whether a target date filter is set.
func (q SearchQuery) HasDate() bool {
	return !q.TargetDate.IsZero()
}

// DateString returns the target date in DateLayout, or "" when unset.
func (q SearchQuery) DateString() string {
	if !q.HasDate() {
		return ""
	}
	return q.TargetDate.Format(DateLayout)
}
