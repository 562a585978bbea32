package storage

import (
	"context"
	"testing"

	"github.com/property-sync/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDB_EnsureInsertRead(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, "duckdb")

	s, err := m.Open(ctx, "properties")
	require.NoError(t, err)

	records := []models.PropertyRecord{
		record("id", models.Text("1"), "Images", models.TextList([]string{"x.jpg"})),
		record("id", models.Text("2")),
	}
	cols := models.ColumnsOf(records)
	require.NoError(t, s.EnsureTable(ctx, "properties", cols))
	require.NoError(t, s.EnsureTable(ctx, "properties", cols))

	report, err := s.InsertEach(ctx, "properties", cols, records)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	require.NoError(t, s.Close())

	ro, err := m.OpenExisting(ctx, "properties")
	require.NoError(t, err)
	defer ro.Close()

	rows, err := ro.ReadAll(ctx, "properties")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "Images"}, rows[0].Columns)
	assert.Equal(t, []any{"1", "x.jpg"}, rows[0].Values)
	assert.Equal(t, []any{"2", nil}, rows[1].Values)

	stores, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "duckdb", stores[0].Driver)
}

func TestDuckDB_OpenExistingMissing(t *testing.T) {
	m := newTestManager(t, "duckdb")
	_, err := m.OpenExisting(context.Background(), "properties")
	assert.ErrorIs(t, err, ErrConnection)
}
