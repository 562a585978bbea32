package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/property-sync/backend/internal/models"
)

func init() {
	registerBackend("postgres", func(cfg Config) (backend, error) {
		if cfg.PostgresDSN == "" {
			return nil, errors.New("storage: postgres driver requires a DSN")
		}
		return &postgresBackend{dsn: cfg.PostgresDSN}, nil
	})
}

// postgresBackend maps each store to a schema of one database.
type postgresBackend struct {
	dsn string
}

func (b *postgresBackend) name() string { return "postgres" }

func (b *postgresBackend) open(ctx context.Context, store string, create bool) (*sql.DB, dialect, error) {
	db, err := sql.Open("pgx", b.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}
	db.SetMaxOpenConns(1)
	if err := pingOrClose(ctx, db, store); err != nil {
		return nil, nil, err
	}

	if create {
		if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(store)); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create schema %s: %w", store, err)
		}
		return db, schemaDialect{schema: store}, nil
	}

	var exists bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", store,
	).Scan(&exists)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}
	if !exists {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: store %s does not exist", ErrConnection, store)
	}
	return db, schemaDialect{schema: store}, nil
}

func (b *postgresBackend) list(ctx context.Context) ([]models.StoreInfo, error) {
	db, err := sql.Open("pgx", b.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg\_%' AND schema_name <> 'information_schema'`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing schemas: %v", ErrConnection, err)
	}
	defer rows.Close()

	var out []models.StoreInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if ValidateName(name) != nil {
			continue
		}
		out = append(out, models.StoreInfo{Name: name, Driver: "postgres"})
	}
	return out, rows.Err()
}
