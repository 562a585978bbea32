// Package pipeline composes fetching, parsing and storing of listing feeds.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/property-sync/backend/internal/models"
	"github.com/property-sync/backend/internal/parser"
	"github.com/property-sync/backend/internal/storage"
)

// Fetcher downloads a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

// StoreOpener opens stores; *storage.Manager implements it.
type StoreOpener interface {
	Open(ctx context.Context, store string) (storage.Store, error)
	OpenExisting(ctx context.Context, store string) (storage.Store, error)
	List(ctx context.Context) ([]models.StoreInfo, error)
}

// SyncResult describes one completed Persist call.
type SyncResult struct {
	Store    string
	Table    string
	Columns  models.ColumnSet
	Records  int
	Report   storage.BatchReport
	Duration time.Duration
}

// Pipeline runs the conversions behind the HTTP endpoints.
type Pipeline struct {
	fetcher Fetcher
	parser  *parser.PropertyParser
	stores  StoreOpener
	logger  *slog.Logger
}

// New creates a Pipeline.
func New(fetcher Fetcher, p *parser.PropertyParser, stores StoreOpener, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fetcher: fetcher, parser: p, stores: stores, logger: logger}
}

// Convert fetches url and parses it into records.
func (p *Pipeline) Convert(ctx context.Context, url string) ([]models.PropertyRecord, error) {
	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := p.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("feed parsed", "url", url, "bytes", len(data), "records", len(records))
	return records, nil
}

// Persist fetches and parses url, then writes every record into table of
// store. The column set comes from the first record only; an empty batch
// still creates the table using the rules' fallback columns. Row failures
// are reported in the result, not returned as an error.
func (p *Pipeline) Persist(ctx context.Context, url, store, table string) (SyncResult, error) {
	start := time.Now()
	result := SyncResult{Store: store, Table: table}

	records, err := p.Convert(ctx, url)
	if err != nil {
		return result, err
	}
	result.Records = len(records)

	cols := models.ColumnsOf(records)
	if len(cols) == 0 {
		cols = models.ColumnSet(p.parser.Rules().FallbackColumns())
	}
	if len(cols) == 0 {
		return result, errors.New("no columns to create table from")
	}
	result.Columns = cols

	s, err := p.stores.Open(ctx, store)
	if err != nil {
		return result, err
	}
	defer s.Close()

	if err := s.EnsureTable(ctx, table, cols); err != nil {
		return result, err
	}
	report, err := s.InsertEach(ctx, table, cols, records)
	result.Report = report
	if err != nil {
		return result, fmt.Errorf("insert into %s.%s: %w", store, table, err)
	}

	result.Duration = time.Since(start)
	p.logger.Info("sync completed",
		"url", url,
		"store", store,
		"table", table,
		"columns", len(cols),
		"inserted", report.Inserted,
		"failed", report.Failed(),
		"duration", result.Duration,
	)
	return result, nil
}

// ReadAll returns every row of table in an existing store.
func (p *Pipeline) ReadAll(ctx context.Context, store, table string) ([]models.Row, error) {
	s, err := p.stores.OpenExisting(ctx, store)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.ReadAll(ctx, table)
}

// Stores lists the existing stores.
func (p *Pipeline) Stores(ctx context.Context) ([]models.StoreInfo, error) {
	return p.stores.List(ctx)
}
