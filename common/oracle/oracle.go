// Package oracle abstracts the external authority the gateway consults
// for authorization decisions and key custody. The production
// implementation is the on-chain Platform contract; the interface keeps
// the pipelines testable without any blockchain dependency.
package oracle

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrKeyUnavailable indicates the shared symmetric key could not be
	// released: the oracle call failed or returned malformed key material.
	ErrKeyUnavailable = errors.New("oracle: encryption key unavailable")

	// ErrAccessCheckFailed indicates the entitlement check itself failed.
	// Distinct from a clean denial: an oracle outage must never silently
	// grant or deny access.
	ErrAccessCheckFailed = errors.New("oracle: access check failed")
)

// Oracle is the capability surface the pipelines depend on.
type Oracle interface {
	// ReleaseKey obtains the shared 32-byte symmetric key for the
	// service's own identity. Fetched fresh per request; never cached.
	ReleaseKey(ctx context.Context) ([]byte, error)

	// Authorize reports whether account is entitled to decrypted
	// content: an active subscription or a registered creator role.
	Authorize(ctx context.Context, account common.Address) (bool, error)
}
