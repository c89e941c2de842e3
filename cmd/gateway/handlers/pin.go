package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justicantus/mediagate/cmd/gateway/service"
	"github.com/justicantus/mediagate/common/bootstrap"
)

// PinHandler handles the ingest endpoint
type PinHandler struct {
	components *bootstrap.Components
	ingest     *service.IngestService
}

// NewPinHandler creates a new pin handler
func NewPinHandler(components *bootstrap.Components, ingest *service.IngestService) *PinHandler {
	return &PinHandler{
		components: components,
		ingest:     ingest,
	}
}

// Pin accepts a multipart upload, encrypts and publishes it, and
// responds with the metadata record's CID.
// POST /pin
func (h *PinHandler) Pin(c echo.Context) error {
	title := c.FormValue("title")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "must provide file")
	}
	if fileHeader.Size == 0 {
		return c.String(http.StatusBadRequest, "file is empty")
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.components.Logger.Error("opening upload failed", "error", err)
		return c.String(http.StatusInternalServerError, "could not read upload")
	}
	defer file.Close()

	metadataCid, err := h.ingest.Pin(c.Request().Context(), title, file)
	if err != nil {
		h.components.Logger.Error("pin failed", "title", title, "error", err)
		status, msg := httpStatus(err)
		return c.String(status, msg)
	}

	h.components.Logger.Info("pin complete", "cid", metadataCid)

	// Mirror the pinning service's own response shape.
	return c.JSON(http.StatusOK, map[string]string{"Hash": metadataCid})
}
