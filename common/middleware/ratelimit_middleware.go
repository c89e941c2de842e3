package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justicantus/mediagate/common/ratelimit"
)

// Checker is the slice of the limiter the middleware needs.
// *ratelimit.Limiter satisfies it.
type Checker interface {
	CheckGlobal(ctx context.Context, limit int64) (*ratelimit.Result, error)
	CheckAccount(ctx context.Context, account string, limit int64) (*ratelimit.Result, error)
}

// GlobalRateLimit checks the service-wide limit before any work runs.
// Fails open on limiter errors: rate limiting guards capacity, it must
// not become an availability bottleneck itself.
func GlobalRateLimit(checker Checker, limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result, err := checker.CheckGlobal(c.Request().Context(), limit)
			if err != nil {
				return next(c)
			}

			if !result.Allowed {
				return c.String(http.StatusTooManyRequests, "service is busy, try again later")
			}

			return next(c)
		}
	}
}

// AccountRateLimit checks the per-account limit, keyed by the account
// query parameter. Requests without an account fall through; the
// handler rejects them as bad requests anyway.
func AccountRateLimit(checker Checker, limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account := c.QueryParam("account")
			if account == "" {
				return next(c)
			}

			result, err := checker.CheckAccount(c.Request().Context(), account, limit)
			if err != nil {
				return next(c)
			}

			if !result.Allowed {
				return c.String(http.StatusTooManyRequests, "rate limit exceeded for account")
			}

			return next(c)
		}
	}
}
