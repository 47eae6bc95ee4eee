package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks operational counters for a search run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts prometheus.Counter
	FetchFailures *prometheus.CounterVec
	Pages         prometheus.Counter
	Results       prometheus.Counter
	Extractions   *prometheus.CounterVec
	Sentiments    *prometheus.CounterVec
	Stored        prometheus.Counter

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance on a private registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serpgoat_fetch_attempts_total",
			Help: "Total page-load attempts made by navigation sessions.",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serpgoat_fetch_failures_total",
			Help: "Total failed page-load attempts by kind.",
		}, []string{"kind"}),
		Pages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serpgoat_pages_total",
			Help: "Total results pages parsed.",
		}),
		Results: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serpgoat_results_total",
			Help: "Total unique search results accepted.",
		}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serpgoat_extractions_total",
			Help: "Total content extractions by outcome.",
		}, []string{"outcome"}),
		Sentiments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serpgoat_sentiment_total",
			Help: "Total sentiment results by category.",
		}, []string{"category"}),
		Stored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serpgoat_records_stored_total",
			Help: "Total records handed to output sinks.",
		}),
		logger: logger.With("component", "metrics"),
	}
	m.registry.MustRegister(
		m.FetchAttempts, m.FetchFailures, m.Pages, m.Results,
		m.Extractions, m.Sentiments, m.Stored,
	)
	return m
}

// FetchAttempt counts one page-load attempt.
func (m *Metrics) FetchAttempt() {
	if m == nil {
		return
	}
	m.FetchAttempts.Inc()
}

// FetchFailure counts a failed attempt ("timeout", "error", "launch", "exhausted").
func (m *Metrics) FetchFailure(kind string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(kind).Inc()
}

// PageParsed counts one results page and the new results it yielded.
func (m *Metrics) PageParsed(newResults int) {
	if m == nil {
		return
	}
	m.Pages.Inc()
	m.Results.Add(float64(newResults))
}

// Extraction counts one extraction outcome ("ok", "absent", "error").
func (m *Metrics) Extraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

// Sentiment counts one sentiment categorization.
func (m *Metrics) Sentiment(category string) {
	if m == nil {
		return
	}
	m.Sentiments.WithLabelValues(category).Inc()
}

// RecordsStored counts records written to a sink.
func (m *Metrics) RecordsStored(n int) {
	if m == nil {
		return
	}
	m.Stored.Add(float64(n))
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server. The server stops when ctx is done.
func (m *Metrics) StartServer(ctx context.Context, port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return nil
}

// Snapshot returns the summed value of every counter family by name.
func (m *Metrics) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	if m == nil {
		return out
	}
	families, err := m.registry.Gather()
	if err != nil {
		m.logger.Warn("gather metrics", "error", err)
		return out
	}
	for _, fam := range families {
		var total float64
		for _, metric := range fam.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
		out[fam.GetName()] = total
	}
	return out
}
