package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Matcher selects nodes below a selection. An empty result means no match.
type Matcher func(s *goquery.Selection) *goquery.Selection

// CSS returns a Matcher for a goquery CSS selector.
func CSS(selector string) Matcher {
	return func(s *goquery.Selection) *goquery.Selection {
		return s.Find(selector)
	}
}

// XPath returns a Matcher for an XPath expression evaluated against every
// node of the selection. Only descendants of the selection are kept, so
// absolute expressions stay scoped. Invalid expressions never match.
func XPath(expr string) Matcher {
	return func(s *goquery.Selection) *goquery.Selection {
		var found []*html.Node
		seen := make(map[*html.Node]bool)
		for _, n := range s.Nodes {
			nodes, err := htmlquery.QueryAll(n, expr)
			if err != nil {
				return s.FindNodes()
			}
			for _, node := range nodes {
				if !seen[node] {
					seen[node] = true
					found = append(found, node)
				}
			}
		}
		return s.FindNodes(found...)
	}
}

// Chain is an ordered list of matchers. The first matcher that selects at
// least one node wins; later entries are fallbacks for markup variants.
type Chain []Matcher

// Resolve returns every node selected by the first matching entry, or an
// empty selection.
func (c Chain) Resolve(s *goquery.Selection) *goquery.Selection {
	for _, m := range c {
		if found := m(s); found.Length() > 0 {
			return found
		}
	}
	return s.FindNodes()
}

// First returns the first node selected by the winning entry.
func (c Chain) First(s *goquery.Selection) *goquery.Selection {
	return c.Resolve(s).First()
}

// Text returns the whitespace-normalized text of the winning entry's
// first node.
func (c Chain) Text(s *goquery.Selection) string {
	return CleanText(c.First(s).Text())
}

// Attr returns an attribute of the winning entry's first node.
func (c Chain) Attr(s *goquery.Selection, name string) (string, bool) {
	first := c.First(s)
	if first.Length() == 0 {
		return "", false
	}
	v, ok := first.Attr(name)
	return strings.TrimSpace(v), ok
}

// Texts returns the normalized text of the first limit nodes of the
// winning entry in document order. Nodes with no text are skipped but still
// count toward limit. limit <= 0 means no limit.
func (c Chain) Texts(s *goquery.Selection, limit int) []string {
	nodes := c.Resolve(s)
	if limit > 0 && nodes.Length() > limit {
		nodes = nodes.Slice(0, limit)
	}
	var out []string
	nodes.Each(func(_ int, node *goquery.Selection) {
		if t := CleanText(node.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// ClassToken returns an XPath predicate matching elements whose class
// attribute contains name as a whole token.
func ClassToken(name string) string {
	return "contains(concat(' ',normalize-space(@class),' '),' " + name + " ')"
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
