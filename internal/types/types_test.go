package types

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestRejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "javascript:void(0)", "/relative", "https://"} {
		_, err := NewRequest(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidURL), raw)
	}
}

func TestRequestURLStringMergesParams(t *testing.T) {
	req, err := NewRequest("https://www.google.com/search?hl=en")
	require.NoError(t, err)
	req.Params.Set("q", "acme widgets")
	req.Params.Set("start", "10")

	got := req.URLString()
	assert.Contains(t, got, "hl=en")
	assert.Contains(t, got, "q=acme+widgets")
	assert.Contains(t, got, "start=10")

	clone := req.Clone()
	clone.Params.Set("start", "20")
	assert.Equal(t, "10", req.Params.Get("start"))
	assert.Equal(t, "www.google.com", clone.Domain())
}

func TestSentimentFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  SentimentResult
	}{
		{0.5, SentimentResult{SentimentPositive, 0.5}},
		{0.1, SentimentResult{SentimentPositive, 0.1}},
		{0.096, SentimentResult{SentimentPositive, 0.1}},
		{0.094, SentimentResult{SentimentNeutral, 0.09}},
		{-0.1, SentimentResult{SentimentNegative, -0.1}},
		{-0.004, SentimentResult{SentimentNeutral, 0}},
		{-1.4, SentimentResult{SentimentNegative, -1}},
		{3, SentimentResult{SentimentPositive, 1}},
		{math.NaN(), NeutralSentiment},
	}
	for _, tt := range tests {
		got := SentimentFromScore(tt.score)
		assert.Equal(t, tt.want, got, "score %v", tt.score)
		assert.False(t, math.Signbit(got.Score) && got.Score == 0, "negative zero for %v", tt.score)
	}
}

func TestNewSearchQuery(t *testing.T) {
	q, err := NewSearchQuery("  acme ", "03/15/2024", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, "acme", q.Keyword)
	assert.True(t, q.HasDate())
	assert.Equal(t, "03/15/2024", q.DateString())

	q, err = NewSearchQuery("acme", "", 10, 1)
	require.NoError(t, err)
	assert.False(t, q.HasDate())
	assert.Empty(t, q.DateString())

	_, err = NewSearchQuery("", "", 10, 1)
	assert.Error(t, err)
	_, err = NewSearchQuery("acme", "2024-03-15", 10, 1)
	assert.Error(t, err)
	_, err = NewSearchQuery("acme", "", 0, 1)
	assert.Error(t, err)
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform(" Reddit ")
	assert.True(t, ok)
	assert.Equal(t, PlatformReddit, p)
	assert.True(t, p.IsDiscussion())

	_, ok = ParsePlatform("myspace")
	assert.False(t, ok)

	assert.True(t, PlatformYouTube.IsSocial())
	assert.False(t, PlatformNews.IsSocial())
}

func TestSearchResultRecordContentWins(t *testing.T) {
	r := &SearchResult{
		Title:    "Snippet title",
		URL:      "https://www.reddit.com/r/x/1",
		Snippet:  "short",
		Platform: PlatformReddit,
	}
	r.SetSentiment(SentimentResult{SentimentNegative, -0.4})
	r.Merge(nil)
	assert.Nil(t, r.Content)

	r.Merge(&ContentRecord{URL: r.URL, Platform: PlatformReddit, Content: "body"})
	rec := r.Record()

	assert.Equal(t, "", rec.GetString("title"), "extractor title wins even when empty")
	assert.Equal(t, "body", rec.GetString("content"))
	assert.Equal(t, []string{}, rec["comments"])
	assert.Equal(t, "Negative", rec.GetString("sentiment"))
	assert.Equal(t, -0.4, rec["sentiment_score"])
	_, hasAuthor := rec["author"]
	assert.False(t, hasAuthor)
}

func TestRecordToFlatMap(t *testing.T) {
	rec := Record{"a": "x", "n": 1.5, "c": []string{"one", "two"}}
	flat := rec.ToFlatMap()
	assert.Equal(t, "x", flat["a"])
	assert.Equal(t, "1.5", flat["n"])
	assert.Equal(t, `["one","two"]`, flat["c"])

	clone := rec.Clone()
	clone["a"] = "y"
	assert.Equal(t, "x", rec.GetString("a"))
	assert.Len(t, rec.Keys(), 3)
}

func TestFetchErrorTimeout(t *testing.T) {
	err := &FetchError{URL: "https://example.com", Err: ErrTimeout}
	assert.True(t, err.IsTimeout())
	assert.True(t, errors.Is(err, ErrTimeout))

	var cfgErr error = &ConfigError{Key: "search.max_pages", Reason: "must be >= 1"}
	assert.Contains(t, cfgErr.Error(), "search.max_pages")
}
