// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/property-sync/backend/internal/models"
	"github.com/property-sync/backend/internal/pipeline"
)

// PropertyService runs the feed conversions; *pipeline.Pipeline implements it.
// This allows mocking in tests
type PropertyService interface {
	Convert(ctx context.Context, url string) ([]models.PropertyRecord, error)
	Persist(ctx context.Context, url, store, table string) (pipeline.SyncResult, error)
	ReadAll(ctx context.Context, store, table string) ([]models.Row, error)
	Stores(ctx context.Context) ([]models.StoreInfo, error)
}

// PropertyHandler handles the feed conversion endpoints
type PropertyHandler interface {
	HandleXMLToJSON(c echo.Context) error
	HandleXMLToDB(c echo.Context) error
	HandleGetProperties(c echo.Context) error
	HandleListStores(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
