// Package stub runs a local mock scoring endpoint.
//
// It accepts the same request shape as a real deployment, so a replay
// can be exercised end to end without cloud access: POST /score with a
// {"data": [...]} body returns one fake prediction per row.
package stub

import (
	"math/rand"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// scoreRequest is the expected request body.
type scoreRequest struct {
	Data []map[string]any `json:"data"`
}

// errorResponse is returned for malformed or unauthorized requests.
type errorResponse struct {
	Message string `json:"message"`
}

// Config configures the stub endpoint.
type Config struct {
	// APIKey, when non-empty, is the bearer token every request must
	// present. Empty disables the auth check.
	APIKey string

	// FailEvery makes every Nth request return 502, for rehearsing
	// failure handling. Zero disables injected failures.
	FailEvery int
}

// BuildServer assembles the echo server for the stub endpoint.
func BuildServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// The handler runs on echo's per-connection goroutines, so the
	// injected-failure counter must tolerate concurrent requests.
	var requests atomic.Int64
	e.POST("/score", func(c echo.Context) error {
		n := requests.Add(1)
		if cfg.FailEvery > 0 && n%int64(cfg.FailEvery) == 0 {
			return c.JSON(http.StatusBadGateway, errorResponse{Message: "injected failure"})
		}

		if cfg.APIKey != "" {
			if c.Request().Header.Get("Authorization") != "Bearer "+cfg.APIKey {
				return c.JSON(http.StatusUnauthorized, errorResponse{Message: "missing or invalid bearer token"})
			}
		}

		var req scoreRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		}
		if len(req.Data) == 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "data must be a non-empty list"})
		}

		// One fake prediction per row, like a regression model would return.
		predictions := make([]float64, len(req.Data))
		for i := range predictions {
			predictions[i] = rand.Float64() * 100
		}
		return c.JSON(http.StatusOK, predictions)
	})

	return e
}
