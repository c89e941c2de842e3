package handlers

import (
	"errors"
	"net/http"

	"github.com/justicantus/mediagate/cmd/gateway/service"
	"github.com/justicantus/mediagate/common/ipfs"
	"github.com/justicantus/mediagate/common/oracle"
	"github.com/justicantus/mediagate/common/signature"
)

// httpStatus maps a pipeline error to exactly one status code and a
// short, non-leaking message. Full causes are logged where the error
// arose; nothing cryptographic reaches the response body.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		// Validation messages carry only what the client sent wrong.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, signature.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid signature"
	case errors.Is(err, service.ErrCouldNotDecrypt):
		return http.StatusBadRequest, "could not decrypt file"
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, oracle.ErrAccessCheckFailed):
		return http.StatusBadGateway, "access check failed"
	case errors.Is(err, oracle.ErrKeyUnavailable):
		return http.StatusBadGateway, "encryption key unavailable"
	case errors.Is(err, ipfs.ErrStoreUnavailable):
		return http.StatusBadGateway, "storage service unavailable"
	case errors.Is(err, ipfs.ErrStoreRejected):
		return http.StatusInternalServerError, "storage service error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
