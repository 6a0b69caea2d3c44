package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// UserHeader carries the caller's participant name.
const UserHeader = "User"

// UserContextKey is the echo context key holding the caller's name.
const UserContextKey = "user"

// Identity copies the User header into the echo context and the request
// logger. The header is taken at face value: there is no authentication,
// so any client can speak for any name.
func Identity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := strings.TrimSpace(c.Request().Header.Get(UserHeader))
		c.Set(UserContextKey, user)

		if user != "" {
			ctx := c.Request().Context()
			logger := FromContext(ctx).With("user", user)
			c.SetRequest(c.Request().WithContext(WithLogger(ctx, logger)))
		}
		return next(c)
	}
}

// UserFromContext returns the name set by Identity, or "" when absent.
func UserFromContext(c echo.Context) string {
	user, _ := c.Get(UserContextKey).(string)
	return user
}
