package storage

import (
	"testing"

	"github.com/property-sync/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreateTableSQL(t *testing.T) {
	cols := models.ColumnSet{"id", `we"ird`, "Features"}

	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "properties" ("id" TEXT, "we""ird" TEXT, "Features" TEXT)`,
		createTableSQL(fileDialect{}, "properties", cols))
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "properties_1"."properties" ("id" TEXT, "we""ird" TEXT, "Features" TEXT)`,
		createTableSQL(schemaDialect{schema: "properties_1"}, "properties", cols))
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "t" ("a", "b") VALUES (?, ?)`,
		insertSQL(fileDialect{}, "t", []string{"a", "b"}))
	assert.Equal(t,
		`INSERT INTO "s"."t" ("a", "b") VALUES ($1, $2)`,
		insertSQL(schemaDialect{schema: "s"}, "t", []string{"a", "b"}))
	assert.Equal(t,
		`INSERT INTO "t" DEFAULT VALUES`,
		insertSQL(fileDialect{}, "t", nil))
}

func TestSelectSQL(t *testing.T) {
	assert.Equal(t, `SELECT * FROM "s"."t"`, selectAllSQL(schemaDialect{schema: "s"}, "t"))
	assert.Equal(t, `SELECT * FROM "t" LIMIT 0`, probeColumnsSQL(fileDialect{}, "t"))
}

func TestColumnValue(t *testing.T) {
	assert.Nil(t, columnValue(models.Null()))
	assert.Equal(t, "x", columnValue(models.Text("x")))
	assert.Equal(t, "a, b", columnValue(models.TextList([]string{"a", "b"})))
	assert.Equal(t, "", columnValue(models.TextList(nil)))
}
