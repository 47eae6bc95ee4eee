// Package storage writes finished result records to files or MongoDB,
// stamping each record with the metadata of the run that produced it.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of records.
	Store(records []types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// RunMeta identifies one search run in every record it emits.
type RunMeta struct {
	RunID       string
	Keyword     string
	SearchDate  string
	ProcessedAt time.Time
}

// NewRunMeta creates the metadata for a run of q started at now.
func NewRunMeta(q types.SearchQuery, now time.Time) RunMeta {
	return RunMeta{
		RunID:       uuid.NewString(),
		Keyword:     q.Keyword,
		SearchDate:  q.DateString(),
		ProcessedAt: now.UTC(),
	}
}

// Stamp returns copies of records carrying the run metadata fields.
func (m RunMeta) Stamp(records []types.Record) []types.Record {
	out := make([]types.Record, len(records))
	processed := m.ProcessedAt.Format(time.RFC3339)
	for i, rec := range records {
		c := rec.Clone()
		c["keyword"] = m.Keyword
		c["search_date"] = m.SearchDate
		c["processed_at"] = processed
		c["run_id"] = m.RunID
		out[i] = c
	}
	return out
}

// FileName returns "<keyword>_<date>.<ext>" with the date's slashes turned
// into dashes. Path separators in the keyword are replaced too.
func (m RunMeta) FileName(ext string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(m.Keyword)
	if m.SearchDate != "" {
		name += "_" + strings.ReplaceAll(m.SearchDate, "/", "-")
	}
	return name + "." + ext
}

// New creates the backend named by cfg.Format.
func New(cfg config.OutputConfig, meta RunMeta, logger *slog.Logger) (Storage, error) {
	switch cfg.Format {
	case "json", "jsonl", "csv":
		return NewFileStorage(cfg.Format, filepath.Join(cfg.Directory, meta.FileName(cfg.Format)), logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, &types.StorageError{Backend: cfg.Format, Err: fmt.Errorf("unsupported output format")}
	}
}
