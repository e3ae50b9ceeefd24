package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core/admin"
)

const contextPrincipalKey = "principal"

// reviewerMiddleware guards admission-review endpoints.
//
// The JWT role claim is only a fast-path hint: a token without a reviewing
// role is rejected outright (deny on a stale claim is safe), but capability
// is granted solely by the resolver's authoritative record. A resolver error
// fails closed.
func reviewerMiddleware(resolver *admin.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != admin.RoleAdmin && claims.Role != admin.RoleReviewer {
				return errHttpForbidden
			}

			p, err := resolver.Resolve(ctx.Request().Context(), claims.Subject)
			if err != nil || p == nil || !p.CanReview() {
				return errHttpForbidden
			}
			ctx.Set(contextPrincipalKey, *p)
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (admin.Principal, bool) {
	p, ok := ctx.Get(contextPrincipalKey).(admin.Principal)
	return p, ok
}
