package types

import (
	"encoding/json"
	"time"
)

// SearchResult is one validated entry from a results page. It is enriched in
// place by the sentiment engine and then by a content extractor.
type SearchResult struct {
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Snippet   string         `json:"snippet"`
	Platform  Platform       `json:"platform"`
	Sentiment Sentiment      `json:"sentiment"`
	Score     float64        `json:"sentiment_score"`
	Content   *ContentRecord `json:"-"`

	// Page is the zero-based results page the entry was found on.
	Page int `json:"-"`
}

// SetSentiment copies a sentiment result onto the search result.
func (r *SearchResult) SetSentiment(s SentimentResult) {
	r.Sentiment = s.Category
	r.Score = s.Score
}

// Merge attaches an extracted content record. Nil records are ignored.
func (r *SearchResult) Merge(c *ContentRecord) {
	if c == nil {
		return
	}
	r.Content = c
}

// Record flattens the result and its merged content into one field set.
// Content fields win on key collision.
func (r *SearchResult) Record() Record {
	rec := Record{
		"title":           r.Title,
		"url":             r.URL,
		"snippet":         r.Snippet,
		"platform":        string(r.Platform),
		"sentiment":       string(r.Sentiment),
		"sentiment_score": r.Score,
	}
	if r.Content != nil {
		for k, v := range r.Content.Fields() {
			rec[k] = v
		}
	}
	return rec
}

// ContentRecord is the normalized output of a content extractor.
type ContentRecord struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      string   `json:"author,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	Comments    []string `json:"comments,omitempty"`
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
}

// MaxComments caps the comments collected from a discussion page.
const MaxComments = 10

// Fields returns the record's keys as produced by its extractor. Discussion
// records carry comments and no author/date; other records the reverse.
func (c *ContentRecord) Fields() Record {
	rec := Record{
		"title":    c.Title,
		"content":  c.Content,
		"url":      c.URL,
		"platform": string(c.Platform),
	}
	if c.Platform.IsDiscussion() {
		comments := c.Comments
		if comments == nil {
			comments = []string{}
		}
		rec["comments"] = comments
		return rec
	}
	rec["author"] = c.Author
	rec["publish_date"] = c.PublishDate
	return rec
}

// Record is a flat field set handed to an output sink.
type Record map[string]any

// GetString retrieves a field value as a string.
func (r Record) GetString(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Keys returns all field names.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// ToFlatMap returns a string map suitable for CSV export.
func (r Record) ToFlatMap() map[string]string {
	flat := make(map[string]string, len(r))
	for k, v := range r {
		switch val := v.(type) {
		case string:
			flat[k] = val
		case []byte:
			flat[k] = string(val)
		case time.Time:
			flat[k] = val.Format(time.RFC3339)
		default:
			b, _ := json.Marshal(val)
			flat[k] = string(b)
		}
	}
	return flat
}
