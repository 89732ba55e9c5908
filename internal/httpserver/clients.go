package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/internal/util"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

type ClientsHTTP struct {
	Svc *service.ClientService
}

func (h *ClientsHTTP) GetClients(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.list")

	items, err := h.Svc.GetClients(ctx)
	if err != nil {
		return serviceError(l, "get_clients_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ClientsHTTP) SearchClients(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.search")

	q := c.QueryParam("q")
	limit, err := util.ParseIntDefault(c.QueryParam("limit"), 0)
	if err != nil {
		l.Warn("search_clients_failed", "status", 400, "reason", "limit is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}

	items, err := h.Svc.SearchClients(ctx, q, limit)
	if err != nil {
		return serviceError(l, "search_clients_failed", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse[models.Client]{Query: q, Total: len(items), Items: items})
}

func (h *ClientsHTTP) GetClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.Svc.GetClient(ctx, id)
	if err != nil {
		return serviceError(l, "get_client_failed", err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientsHTTP) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.create")

	var req transport.ClientRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("client_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	client, err := h.Svc.CreateClient(ctx, req)
	if err != nil {
		return serviceError(l, "client_create_failed", err)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/clients/%d", client.ID))
	return c.JSON(http.StatusCreated, client)
}

func (h *ClientsHTTP) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.ClientRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("client_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	client, err := h.Svc.UpdateClient(ctx, id, req)
	if err != nil {
		return serviceError(l, "client_update_failed", err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientsHTTP) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clients.delete")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.DeleteClient(ctx, id); err != nil {
		return serviceError(l, "client_delete_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
