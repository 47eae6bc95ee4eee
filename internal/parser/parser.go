// Package parser turns fetched markup into search results using ordered
// fallback selector chains.
package parser

import (
	"github.com/IshaanNene/serpgoat/internal/types"
)

// SeenSet tracks URLs already accepted during one query.
type SeenSet interface {
	// Add records rawURL and reports whether it was new.
	Add(rawURL string) bool
}

// Classifier maps a result URL to its platform.
type Classifier interface {
	Classify(rawURL string) types.Platform
}

// Page is the outcome of parsing one results page.
type Page struct {
	// Results holds the accepted records in document order.
	Results []*types.SearchResult

	// HasNext reports whether a next-page affordance was present.
	HasNext bool

	// Blocks is the number of candidate blocks inspected.
	Blocks int
}
