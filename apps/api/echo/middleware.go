package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shule-edu/shule/core/account"
)

// roleMiddleware only lets requests whose token carries one of the given
// roles through.
func roleMiddleware(roles ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if account.Role(claims.Role) == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func directorMiddleware() echo.MiddlewareFunc   { return roleMiddleware(account.RoleDirector) }
func instructorMiddleware() echo.MiddlewareFunc { return roleMiddleware(account.RoleInstructor) }
func studentMiddleware() echo.MiddlewareFunc    { return roleMiddleware(account.RoleStudent) }
