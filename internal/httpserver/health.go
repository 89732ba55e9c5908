package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

type Check func(ctx context.Context) error

type HealthHTTP struct {
	Checks map[string]Check
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	failed := map[string]string{}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "checks", failed)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
