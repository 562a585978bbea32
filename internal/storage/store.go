// Package storage persists property records as rows of relational tables.
//
// A store is a named database (a file for sqlite and duckdb, a schema for
// postgres) holding tables whose columns are all TEXT. Tables are created
// from the first record of a batch and are never altered afterwards.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/property-sync/backend/internal/models"
)

var (
	// ErrConnection is returned when a store or table cannot be reached.
	ErrConnection = errors.New("store unreachable")
	// ErrInvalidName is returned for store or table names outside [A-Za-z0-9_].
	ErrInvalidName = errors.New("invalid name")
	// ErrUnknownDriver is returned for an unsupported backend name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// ListSeparator joins TextList values into a single TEXT column.
const ListSeparator = ", "

// Store is an open connection to one store.
type Store interface {
	// EnsureTable creates table with one TEXT column per name in cols unless a
	// table of that name already exists. An existing table is left untouched.
	EnsureTable(ctx context.Context, table string, cols models.ColumnSet) error
	// InsertEach writes one row per record, each in its own statement. A failed
	// row is logged and reported and does not stop the remaining rows.
	InsertEach(ctx context.Context, table string, cols models.ColumnSet, records []models.PropertyRecord) (BatchReport, error)
	// ReadAll returns every row of table using the table's current columns.
	ReadAll(ctx context.Context, table string) ([]models.Row, error)
	Close() error
}

// StoreError describes a single row that could not be written.
type StoreError struct {
	Store string
	Table string
	Row   int
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: table %s: row %d: %v", e.Store, e.Table, e.Row, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// BatchReport is the per-row outcome of InsertEach.
type BatchReport struct {
	Store     string
	Table     string
	Attempted int
	Inserted  int
	Failures  []*StoreError
}

// Failed returns the number of rows that were not written.
func (r BatchReport) Failed() int { return len(r.Failures) }

// Err joins the row failures, or returns nil when every row was written.
func (r BatchReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateName checks a store or table name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// TimestampedName returns prefix followed by now formatted with layout,
// e.g. properties_20240131_235959_123456. The fractional second separators
// '.' and ',' become '_'.
func TimestampedName(prefix, layout string, now time.Time) string {
	return prefix + fractionSeparators.Replace(now.Format(layout))
}

var fractionSeparators = strings.NewReplacer(".", "_", ",", "_")

// quoteIdent double-quotes an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnValue converts a record value to its TEXT column representation.
func columnValue(v models.Value) any {
	switch v.Kind() {
	case models.KindText:
		s, _ := v.Text()
		return s
	case models.KindTextList:
		list, _ := v.List()
		return strings.Join(list, ListSeparator)
	default:
		return nil
	}
}
