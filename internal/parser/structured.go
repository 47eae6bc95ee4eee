package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta is the metadata a page publishes in its head: meta tags by name
// or property, and JSON-LD objects. Extractors use it as the last tier of
// their title, author and date chains.
type PageMeta struct {
	// Tags maps a lowercased meta name or property ("og:title",
	// "article:published_time", "author") to its first non-empty content.
	Tags map[string]string

	// JSONLD holds every JSON-LD object, with @graph members flattened.
	JSONLD []map[string]any
}

// ExtractMeta collects meta tags and JSON-LD from a document.
func ExtractMeta(doc *goquery.Document) *PageMeta {
	m := &PageMeta{Tags: make(map[string]string)}

	doc.Find("meta[content]").Each(func(_ int, sel *goquery.Selection) {
		key, _ := sel.Attr("property")
		if key == "" {
			key, _ = sel.Attr("name")
		}
		if key == "" {
			key, _ = sel.Attr("itemprop")
		}
		content, _ := sel.Attr("content")
		key = strings.ToLower(strings.TrimSpace(key))
		content = strings.TrimSpace(content)
		if key == "" || content == "" {
			return
		}
		if _, exists := m.Tags[key]; !exists {
			m.Tags[key] = content
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		// Try parsing as single object
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			m.addJSONLD(obj)
			return
		}

		// Try parsing as array
		var arr []map[string]any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, o := range arr {
				m.addJSONLD(o)
			}
		}
	})

	return m
}

func (m *PageMeta) addJSONLD(obj map[string]any) {
	if graph, ok := obj["@graph"].([]any); ok {
		for _, g := range graph {
			if o, ok := g.(map[string]any); ok {
				m.JSONLD = append(m.JSONLD, o)
			}
		}
		return
	}
	m.JSONLD = append(m.JSONLD, obj)
}

// Tag returns the first non-empty tag among keys.
func (m *PageMeta) Tag(keys ...string) string {
	for _, k := range keys {
		if v := m.Tags[strings.ToLower(k)]; v != "" {
			return v
		}
	}
	return ""
}

// LD returns the first string value of field across JSON-LD objects.
// Objects with a "name" and arrays resolve to their first usable value.
func (m *PageMeta) LD(field string) string {
	for _, obj := range m.JSONLD {
		if v := ldString(obj[field]); v != "" {
			return v
		}
	}
	return ""
}

func ldString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		return ldString(val["name"])
	case []any:
		for _, item := range val {
			if s := ldString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// Title returns the published title.
func (m *PageMeta) Title() string {
	if v := m.Tag("og:title", "twitter:title"); v != "" {
		return v
	}
	return m.LD("headline")
}

// Author returns the published author.
func (m *PageMeta) Author() string {
	if v := m.LD("author"); v != "" {
		return v
	}
	return m.Tag("author", "article:author", "parsely-author")
}

// Published returns the published date as written by the page.
func (m *PageMeta) Published() string {
	if v := m.Tag("article:published_time", "datepublished", "date", "pubdate"); v != "" {
		return v
	}
	return m.LD("datePublished")
}
