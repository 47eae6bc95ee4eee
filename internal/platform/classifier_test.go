package platform

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestClassify(t *testing.T) {
	c := NewClassifier(config.DefaultPlatforms(), testLogger)

	tests := []struct {
		url  string
		want types.Platform
	}{
		{"https://www.reddit.com/r/golang/comments/abc", types.PlatformReddit},
		{"https://old.reddit.com/r/golang", types.PlatformReddit},
		{"https://edition.cnn.com/2024/03/15/story", types.PlatformNews},
		{"https://medium.com/@someone/post", types.PlatformBlog},
		{"https://acme.blogspot.com/2024/post.html", types.PlatformBlog},
		{"https://x.com/acme/status/1", types.PlatformTwitter},
		{"https://WWW.YouTube.com/watch?v=1", types.PlatformYouTube},
		{"https://www.quora.com/Is-acme-legit", types.PlatformQuora},
		{"https://example.com/", types.PlatformOther},
		{"https://notreddit.com/", types.PlatformOther},
		{"not a url at all", types.PlatformOther},
		{"", types.PlatformOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.url), tt.url)
	}
}

func TestClassifyOverlapFollowsPlatformOrder(t *testing.T) {
	c := NewClassifier(map[string][]string{
		"reddit": {"example.com"},
		"news":   {"example.com"},
		"bogus":  {"example.org"},
	}, testLogger)

	assert.Equal(t, types.PlatformNews, c.Classify("https://example.com/a"))
	assert.Equal(t, types.PlatformOther, c.Classify("https://example.org/a"))
}
