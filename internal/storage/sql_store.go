package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/property-sync/backend/internal/models"
)

// sqlStore implements Store on database/sql for every backend.
type sqlStore struct {
	db      *sql.DB
	name    string
	dialect dialect
	logger  *slog.Logger
}

func (s *sqlStore) EnsureTable(ctx context.Context, table string, cols models.ColumnSet) error {
	if err := ValidateName(table); err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("create table %s: empty column set", table)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.dialect, table, cols.Unique())); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) InsertEach(ctx context.Context, table string, cols models.ColumnSet, records []models.PropertyRecord) (BatchReport, error) {
	report := BatchReport{Store: s.name, Table: table, Attempted: len(records)}
	if err := ValidateName(table); err != nil {
		return report, err
	}

	existing, err := s.tableColumns(ctx, table)
	if err != nil {
		return report, err
	}

	// Columns the table does not have are dropped; table columns missing from
	// cols are left NULL. Names match ignoring case and are written under the
	// table's spelling.
	var writable, fields []string
	for _, c := range cols.Unique() {
		if name, ok := existing[strings.ToLower(c)]; ok {
			writable = append(writable, name)
			fields = append(fields, c)
		}
	}
	query := insertSQL(s.dialect, table, writable)

	for i, rec := range records {
		args := make([]any, len(fields))
		for j, c := range fields {
			v, _ := rec.Get(c)
			args[j] = columnValue(v)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			serr := &StoreError{Store: s.name, Table: table, Row: i, Err: err}
			s.logger.Warn("row insert failed",
				"store", s.name,
				"table", table,
				"row", i,
				"error", err,
			)
			report.Failures = append(report.Failures, serr)
			continue
		}
		report.Inserted++
	}
	return report, nil
}

func (s *sqlStore) ReadAll(ctx context.Context, table string) ([]models.Row, error) {
	if err := ValidateName(table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, selectAllSQL(s.dialect, table))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s.%s: %v", ErrConnection, s.name, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}

	out := make([]models.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, models.Row{Columns: cols, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return out, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// tableColumns maps the lower-cased column names of table to their spelling.
func (s *sqlStore) tableColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, probeColumnsSQL(s.dialect, table))
	if err != nil {
		return nil, fmt.Errorf("%w: inspect %s.%s: %v", ErrConnection, s.name, table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	set := make(map[string]string, len(names))
	for _, n := range names {
		if _, dup := set[strings.ToLower(n)]; !dup {
			set[strings.ToLower(n)] = n
		}
	}
	return set, nil
}
