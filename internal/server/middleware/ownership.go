package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// IsOwner reports whether the authenticated user owns the given resource
// owner ID. Admins own everything.
func IsOwner(user *AppUser, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.UserID == ownerID || IsAdmin(user)
}

func IsAdmin(user *AppUser) bool {
	if user == nil {
		return false
	}
	return user.Role == "admin"
}

// RequireOwner guards routes carrying an owner ID path param: the
// authenticated user must match the param unless they are an admin.
func RequireOwner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !IsOwner(user, c.Param(param)) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}

			return next(c)
		}
	}
}
