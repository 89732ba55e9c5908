package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/internal/util"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

type TagsHTTP struct {
	Svc *service.TagService
}

func (h *TagsHTTP) GetTags(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tags.list")

	items, err := h.Svc.GetTags(ctx)
	if err != nil {
		return serviceError(l, "get_tags_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *TagsHTTP) GetTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tags.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tag, err := h.Svc.GetTag(ctx, id)
	if err != nil {
		return serviceError(l, "get_tag_failed", err)
	}
	return c.JSON(http.StatusOK, tag)
}

func (h *TagsHTTP) CreateTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tags.create")

	var req transport.TagRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("tag_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	tag, err := h.Svc.CreateTag(ctx, req)
	if err != nil {
		return serviceError(l, "tag_create_failed", err)
	}
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/tags/%d", tag.ID))
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagsHTTP) UpdateTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tags.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req transport.TagRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("tag_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.UpdateTag(ctx, id, req); err != nil {
		return serviceError(l, "tag_update_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TagsHTTP) DeleteTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tags.delete")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Svc.DeleteTag(ctx, id); err != nil {
		return serviceError(l, "tag_delete_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
