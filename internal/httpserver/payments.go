package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/internal/util"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

type PaymentsHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentsHTTP) GetPayments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments.list")

	take, err := util.ParseIntDefault(c.QueryParam("take"), service.DefaultPaymentsTake)
	if err != nil {
		l.Warn("get_payments_failed", "status", 400, "reason", "take is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "take must be an integer")
	}

	items, err := h.Svc.GetRecentPayments(ctx, take)
	if err != nil {
		return serviceError(l, "get_payments_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

type RateHTTP struct {
	Svc *service.RateService
}

func (h *RateHTTP) GetRate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rate.get")

	rate, err := h.Svc.GetCurrentRate(ctx)
	if err != nil {
		return serviceError(l, "get_rate_failed", err)
	}
	return c.JSON(http.StatusOK, rate)
}

func (h *RateHTTP) UpdateRate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rate.update")

	var req transport.UpdateRateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("rate_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rate, err := h.Svc.UpdateRate(ctx, req.Value)
	if err != nil {
		return serviceError(l, "rate_update_failed", err)
	}
	return c.JSON(http.StatusOK, rate)
}
