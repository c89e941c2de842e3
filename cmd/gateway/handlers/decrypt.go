package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justicantus/mediagate/cmd/gateway/service"
	"github.com/justicantus/mediagate/common/bootstrap"
)

// DecryptHandler handles the egress endpoint
type DecryptHandler struct {
	components *bootstrap.Components
	egress     *service.EgressService
}

// NewDecryptHandler creates a new decrypt handler
func NewDecryptHandler(components *bootstrap.Components, egress *service.EgressService) *DecryptHandler {
	return &DecryptHandler{
		components: components,
		egress:     egress,
	}
}

// Decrypt verifies the caller, authorizes against the oracle, and
// streams the decrypted content back with its sniffed type. No caching
// headers are set: every response is freshly decrypted.
// GET /decrypt?cid=&account=&signature=
func (h *DecryptHandler) Decrypt(c echo.Context) error {
	req := service.DecryptRequest{
		CID:       c.QueryParam("cid"),
		Account:   c.QueryParam("account"),
		Signature: c.QueryParam("signature"),
	}

	log := h.components.Logger.WithCID(req.CID).WithAccount(req.Account)

	result, err := h.egress.Decrypt(c.Request().Context(), req)
	if err != nil {
		log.Error("decrypt failed", "error", err)
		status, msg := httpStatus(err)
		return c.String(status, msg)
	}

	log.Info("decrypt complete",
		"content_type", result.ContentType,
		"size", len(result.Plaintext),
	)

	return c.Blob(http.StatusOK, result.ContentType, result.Plaintext)
}
