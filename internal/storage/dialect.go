package storage

import (
	"strconv"
	"strings"

	"github.com/property-sync/backend/internal/models"
)

// dialect renders the few statements whose syntax differs per backend.
type dialect interface {
	table(name string) string
	placeholder(n int) string
}

// fileDialect serves sqlite and duckdb, where the store is the database file.
type fileDialect struct{}

func (fileDialect) table(name string) string { return quoteIdent(name) }
func (fileDialect) placeholder(int) string   { return "?" }

// schemaDialect serves postgres, where the store is a schema.
type schemaDialect struct {
	schema string
}

func (d schemaDialect) table(name string) string {
	return quoteIdent(d.schema) + "." + quoteIdent(name)
}

func (schemaDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func createTableSQL(d dialect, table string, cols models.ColumnSet) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	return "CREATE TABLE IF NOT EXISTS " + d.table(table) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(d dialect, table string, cols []string) string {
	if len(cols) == 0 {
		return "INSERT INTO " + d.table(table) + " DEFAULT VALUES"
	}
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c)
		marks[i] = d.placeholder(i + 1)
	}
	return "INSERT INTO " + d.table(table) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func selectAllSQL(d dialect, table string) string {
	return "SELECT * FROM " + d.table(table)
}

func probeColumnsSQL(d dialect, table string) string {
	return "SELECT * FROM " + d.table(table) + " LIMIT 0"
}
