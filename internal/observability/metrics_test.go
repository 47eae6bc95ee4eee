package observability

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/serpgoat/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(testLogger)
	m.FetchAttempt()
	m.FetchAttempt()
	m.FetchFailure("timeout")
	m.PageParsed(5)
	m.Extraction("absent")
	m.Sentiment("Negative")
	m.RecordsStored(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("timeout")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Results))

	snap := m.Snapshot()
	assert.Equal(t, 1.0, snap["serpgoat_pages_total"])
	assert.Equal(t, 5.0, snap["serpgoat_records_stored_total"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.FetchAttempt()
	m.FetchFailure("error")
	m.PageParsed(1)
	m.Extraction("ok")
	m.Sentiment("Neutral")
	m.RecordsStored(1)
	assert.Empty(t, m.Snapshot())
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(testLogger)
	m.Sentiment("Positive")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `serpgoat_sentiment_total{category="Positive"} 1`)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Level: "warn", Format: "json"}, false)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json handler expected")

	buf.Reset()
	logger = newLogger(&buf, config.LoggingConfig{Level: "error", Format: "text"}, true)
	logger.Debug("verbose wins")
	assert.Contains(t, buf.String(), "verbose wins")
}
