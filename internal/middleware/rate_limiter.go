package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var errNoClientIP = errors.New("request has no client address")

// clientIP identifies clients by their real IP address.
func clientIP(c echo.Context) (string, error) {
	ip := c.RealIP()
	if ip == "" {
		return "", errNoClientIP
	}
	return ip, nil
}

// RateLimiter limits each client IP to perMinute requests per minute, with
// bursts of up to perMinute requests.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// An in-memory store is enough for a single-instance deployment.
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),

		IdentifierExtractor: clientIP,
		// Codes here must not collide with the handlers error kinds.
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"code":    "client_unidentified",
				"message": "Unable to identify client.",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"code":    "rate_limited",
				"message": "Too many requests. Please try again later.",
			})
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
