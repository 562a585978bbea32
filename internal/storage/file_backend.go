package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/property-sync/backend/internal/models"
)

// fileStores locates stores kept as one database file each in a directory.
type fileStores struct {
	dir    string
	ext    string
	driver string
}

func newFileStores(dir, ext, driver string) (fileStores, error) {
	if dir == "" {
		return fileStores{}, errors.New("storage: data directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fileStores{}, fmt.Errorf("creating data directory: %w", err)
	}
	return fileStores{dir: dir, ext: ext, driver: driver}, nil
}

func (f fileStores) path(store string) string {
	return filepath.Join(f.dir, store+f.ext)
}

// mustExist fails with ErrConnection when the store file is absent.
func (f fileStores) mustExist(store string) error {
	info, err := os.Stat(f.path(store))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: store %s does not exist", ErrConnection, store)
		}
		return fmt.Errorf("%w: %s: %v", ErrConnection, store, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrConnection, f.path(store))
	}
	return nil
}

func (f fileStores) listFiles() ([]models.StoreInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", f.dir, err)
	}
	var out []models.StoreInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), f.ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), f.ext)
		if ValidateName(name) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, models.StoreInfo{
			Name:       name,
			Driver:     f.driver,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return out, nil
}
