package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb"
	"github.com/property-sync/backend/internal/models"
)

func init() {
	registerBackend("duckdb", func(cfg Config) (backend, error) {
		files, err := newFileStores(cfg.DataDir, ".duckdb", "duckdb")
		if err != nil {
			return nil, err
		}
		b := &duckdbBackend{files: files, threads: cfg.DuckDBThreads, memoryLimit: cfg.DuckDBMemoryLimit}
		if b.threads <= 0 {
			b.threads = 4
		}
		if b.memoryLimit == "" {
			b.memoryLimit = "1GB"
		}
		return b, nil
	})
}

// duckdbBackend keeps each store in <dir>/<store>.duckdb.
type duckdbBackend struct {
	files       fileStores
	threads     int
	memoryLimit string
}

func (b *duckdbBackend) name() string { return "duckdb" }

func (b *duckdbBackend) open(ctx context.Context, store string, create bool) (*sql.DB, dialect, error) {
	dsn := b.files.path(store)
	if !create {
		if err := b.files.mustExist(store); err != nil {
			return nil, nil, err
		}
		dsn += "?access_mode=READ_ONLY"
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA memory_limit='%s'", b.memoryLimit),
		fmt.Sprintf("PRAGMA threads=%d", b.threads),
		"PRAGMA enable_progress_bar=false",
	}
	connector, err := duckdb.NewConnector(dsn, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}

	db := sql.OpenDB(connector)
	if err := pingOrClose(ctx, db, store); err != nil {
		return nil, nil, err
	}
	return db, fileDialect{}, nil
}

func (b *duckdbBackend) list(context.Context) ([]models.StoreInfo, error) {
	return b.files.listFiles()
}
