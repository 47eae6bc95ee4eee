package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testMeta(t *testing.T) RunMeta {
	t.Helper()
	q, err := types.NewSearchQuery("acme corp", "01/15/2024", 10, 1)
	require.NoError(t, err)
	return NewRunMeta(q, time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC))
}

func sampleRecords() []types.Record {
	news := (&types.SearchResult{
		Title: "t1", URL: "https://cnn.com/a", Platform: types.PlatformNews,
		Sentiment: types.SentimentPositive, Score: 0.25,
		Content: &types.ContentRecord{Title: "Headline", Content: "body", Author: "Jane", URL: "https://cnn.com/a", Platform: types.PlatformNews},
	}).Record()
	thread := (&types.SearchResult{
		Title: "t2", URL: "https://reddit.com/r/x", Platform: types.PlatformReddit,
		Sentiment: types.SentimentNegative, Score: -0.4,
		Content: &types.ContentRecord{Comments: []string{"c1", "c2"}, URL: "https://reddit.com/r/x", Platform: types.PlatformReddit},
	}).Record()
	return []types.Record{news, thread}
}

func TestRunMeta(t *testing.T) {
	meta := testMeta(t)
	assert.Equal(t, "acme corp_01-15-2024.json", meta.FileName("json"))
	assert.Len(t, meta.RunID, 36)

	noDate := RunMeta{Keyword: "a/b"}
	assert.Equal(t, "a-b.csv", noDate.FileName("csv"))

	in := sampleRecords()
	stamped := meta.Stamp(in)
	require.Len(t, stamped, 2)
	assert.Equal(t, "acme corp", stamped[0]["keyword"])
	assert.Equal(t, "01/15/2024", stamped[0]["search_date"])
	assert.Equal(t, "2024-01-16T09:30:00Z", stamped[0]["processed_at"])
	assert.Equal(t, meta.RunID, stamped[1]["run_id"])
	_, touched := in[0]["keyword"]
	assert.False(t, touched)
}

func TestJSONStorage(t *testing.T) {
	dir := t.TempDir()
	meta := testMeta(t)
	s, err := New(config.OutputConfig{Format: "json", Directory: dir}, meta, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Name())

	require.NoError(t, s.Store(meta.Stamp(sampleRecords())))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "acme corp_01-15-2024.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {"))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Headline", out[0]["title"])
	assert.Equal(t, "Jane", out[0]["author"])
	assert.Equal(t, []any{"c1", "c2"}, out[1]["comments"])
	assert.Equal(t, -0.4, out[1]["sentiment_score"])
}

func TestJSONStorageEmptyRun(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONStorage(filepath.Join(dir, "out", "empty.json"), testLogger)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestJSONLStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.jsonl")
	s, err := NewJSONLStorage(path, testLogger)
	require.NoError(t, err)
	require.NoError(t, s.Store(sampleRecords()))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "https://cnn.com/a", first["url"])
}

func TestCSVStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	s, err := NewCSVStorage(path, testLogger)
	require.NoError(t, err)
	require.NoError(t, s.Store(sampleRecords()))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.IsIncreasing(t, header)
	assert.Contains(t, header, "comments")
	assert.Contains(t, header, "author")

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, "Jane", rows[1][col("author")])
	assert.Equal(t, "", rows[2][col("author")])
	assert.Equal(t, `["c1","c2"]`, rows[2][col("comments")])
	assert.Equal(t, "-0.4", rows[2][col("sentiment_score")])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(config.OutputConfig{Format: "xml"}, RunMeta{Keyword: "k"}, testLogger)
	var se *types.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "xml", se.Backend)
}

func TestMongoStorageBadURI(t *testing.T) {
	_, err := NewMongoStorage("not-a-uri", "db", "c", testLogger)
	var se *types.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "mongodb", se.Backend)
}

// memStorage records batches in memory.
type memStorage struct {
	name    string
	batches [][]types.Record
	err     error
	closed  bool
}

func (m *memStorage) Name() string { return m.name }
func (m *memStorage) Store(r []types.Record) error {
	m.batches = append(m.batches, r)
	return m.err
}
func (m *memStorage) Close() error {
	m.closed = true
	return m.err
}

func TestMultiStorage(t *testing.T) {
	ok := &memStorage{name: "ok"}
	bad := &memStorage{name: "bad", err: errors.New("disk full")}
	multi := NewMultiStorage([]Storage{bad, ok}, testLogger)

	err := multi.Store(sampleRecords())
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, ok.batches, 1)

	assert.Error(t, multi.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}
