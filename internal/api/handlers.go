// Package api exposes the property feed endpoints over echo.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/property-sync/backend/internal/models"
	"github.com/property-sync/backend/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	msgMissingXML      = "No XML path provided"
	msgMissingXMLForDB = "No XML path provided. Include 'post' in your request !"
	msgSyncCompleted   = "Sync completed from XML to database"
	mimeMsgpack        = "application/msgpack"
	headerStoreName    = "X-Store-Name"
	headerRowsInserted = "X-Rows-Inserted"
	headerRowsFailed   = "X-Rows-Failed"
	formatMsgpack      = "msgpack"
)

// Settings holds the store naming and sync options used by the handlers.
type Settings struct {
	ReadStore       string
	Table           string
	StorePrefix     string
	StoreLayout     string
	FailOnRowErrors bool
}

// Handler handles the feed conversion requests.
type Handler struct {
	svc      PropertyService
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(svc PropertyService, settings Settings, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:      svc,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// xmlParam returns the feed URL from the query string or form body. A
// present but empty value counts as provided.
func xmlParam(c echo.Context) (string, bool) {
	params, err := c.FormParams()
	if err != nil {
		params = c.QueryParams()
	}
	values, ok := params["xml"]
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

// respond writes payload as JSON, or as msgpack when format=msgpack.
func respond(c echo.Context, payload any) error {
	if c.QueryParam("format") != formatMsgpack {
		return c.JSON(http.StatusOK, payload)
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return RespondWithError(c, NewInternalError(err))
	}
	return c.Blob(http.StatusOK, mimeMsgpack, data)
}

// HandleXMLToJSON fetches the feed and returns it as a JSON array of properties.
func (h *Handler) HandleXMLToJSON(c echo.Context) error {
	url, ok := xmlParam(c)
	if !ok {
		return RespondWithError(c, NewBadRequestError(msgMissingXML))
	}

	records, err := h.svc.Convert(c.Request().Context(), url)
	if err != nil {
		h.logger.Error("xml to json failed", "url", url, "error", err)
		return RespondWithError(c, NewInternalError(err))
	}
	return respond(c, records)
}

// HandleXMLToDB fetches the feed and persists it into a new timestamped store.
func (h *Handler) HandleXMLToDB(c echo.Context) error {
	url, ok := xmlParam(c)
	if !ok {
		return RespondWithError(c, NewBadRequestError(msgMissingXMLForDB))
	}

	store := storage.TimestampedName(h.settings.StorePrefix, h.settings.StoreLayout, h.now())
	result, err := h.svc.Persist(c.Request().Context(), url, store, h.settings.Table)
	if err != nil {
		h.logger.Error("xml to db failed", "url", url, "store", store, "error", err)
		return RespondWithError(c, NewInternalError(err))
	}

	header := c.Response().Header()
	header.Set(headerStoreName, result.Store)
	header.Set(headerRowsInserted, strconv.Itoa(result.Report.Inserted))
	header.Set(headerRowsFailed, strconv.Itoa(result.Report.Failed()))

	if h.settings.FailOnRowErrors {
		if err := result.Report.Err(); err != nil {
			return RespondWithError(c, NewInternalError(err))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msgSyncCompleted})
}

// HandleGetProperties returns every row of the read store's table.
func (h *Handler) HandleGetProperties(c echo.Context) error {
	store := h.settings.ReadStore
	if s := c.QueryParam("store"); s != "" {
		if err := storage.ValidateName(s); err != nil {
			return RespondWithError(c, NewBadRequestError(err.Error()))
		}
		store = s
	}

	rows, err := h.svc.ReadAll(c.Request().Context(), store, h.settings.Table)
	if err != nil {
		h.logger.Error("read properties failed", "store", store, "error", err)
		return RespondWithError(c, NewInternalError(err))
	}
	return respond(c, rows)
}

// HandleListStores lists the stores created so far.
func (h *Handler) HandleListStores(c echo.Context) error {
	stores, err := h.svc.Stores(c.Request().Context())
	if err != nil {
		return RespondWithError(c, NewInternalError(err))
	}
	if stores == nil {
		stores = []models.StoreInfo{}
	}
	return c.JSON(http.StatusOK, map[string]any{"stores": stores})
}
