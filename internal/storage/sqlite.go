package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/property-sync/backend/internal/models"
	_ "modernc.org/sqlite"
)

func init() {
	registerBackend("sqlite", func(cfg Config) (backend, error) {
		files, err := newFileStores(cfg.DataDir, ".db", "sqlite")
		if err != nil {
			return nil, err
		}
		return &sqliteBackend{files: files}, nil
	})
}

// sqliteBackend keeps each store in <dir>/<store>.db.
type sqliteBackend struct {
	files fileStores
}

func (b *sqliteBackend) name() string { return "sqlite" }

func (b *sqliteBackend) open(ctx context.Context, store string, create bool) (*sql.DB, dialect, error) {
	if !create {
		if err := b.files.mustExist(store); err != nil {
			return nil, nil, err
		}
	}
	dsn := sqliteDSN(b.files.path(store), !create)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}
	db.SetMaxOpenConns(1)
	if err := pingOrClose(ctx, db, store); err != nil {
		return nil, nil, err
	}
	return db, fileDialect{}, nil
}

// sqliteDSN builds a file: URI for path with its reserved characters escaped.
func sqliteDSN(path string, readOnly bool) string {
	query := "_pragma=busy_timeout(5000)"
	if readOnly {
		query += "&mode=ro"
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: query}
	return u.String()
}

func (b *sqliteBackend) list(context.Context) ([]models.StoreInfo, error) {
	return b.files.listFiles()
}
