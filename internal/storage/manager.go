package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/property-sync/backend/internal/models"
)

// Config selects the backend and where its stores live.
type Config struct {
	Driver            string
	DataDir           string
	PostgresDSN       string
	DuckDBThreads     int
	DuckDBMemoryLimit string
}

// backend opens stores of one driver.
type backend interface {
	name() string
	// open returns a connection to store. With create unset the store must
	// already exist and is opened read-only where the driver allows it.
	open(ctx context.Context, store string, create bool) (*sql.DB, dialect, error)
	list(ctx context.Context) ([]models.StoreInfo, error)
}

type backendFactory func(cfg Config) (backend, error)

var backends = map[string]backendFactory{}

func registerBackend(driver string, f backendFactory) {
	backends[driver] = f
}

// Drivers returns the supported driver names.
func Drivers() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Manager opens stores on the configured backend. Each call returns a fresh
// connection that the caller must Close.
type Manager struct {
	backend backend
	logger  *slog.Logger
}

// NewManager creates a Manager for cfg.Driver.
func NewManager(cfg Config, logger *slog.Logger) (*Manager, error) {
	factory, ok := backends[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	b, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: b, logger: logger}, nil
}

// Driver returns the backend name.
func (m *Manager) Driver() string { return m.backend.name() }

// Open opens store for writing, creating it if needed.
func (m *Manager) Open(ctx context.Context, store string) (Store, error) {
	return m.open(ctx, store, true)
}

// OpenExisting opens a store that must already exist.
func (m *Manager) OpenExisting(ctx context.Context, store string) (Store, error) {
	return m.open(ctx, store, false)
}

func (m *Manager) open(ctx context.Context, store string, create bool) (Store, error) {
	if err := ValidateName(store); err != nil {
		return nil, err
	}
	db, d, err := m.backend.open(ctx, store, create)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("store opened", "driver", m.backend.name(), "store", store, "create", create)
	return &sqlStore{
		db:      db,
		name:    store,
		dialect: d,
		logger:  m.logger.With("driver", m.backend.name()),
	}, nil
}

// List returns the existing stores sorted by name.
func (m *Manager) List(ctx context.Context) ([]models.StoreInfo, error) {
	stores, err := m.backend.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].Name < stores[j].Name
	})
	return stores, nil
}

// pingOrClose verifies db and closes it on failure.
func pingOrClose(ctx context.Context, db *sql.DB, store string) error {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}
	return nil
}
