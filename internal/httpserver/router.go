package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/middleware"
	"github.com/Skotchmaster/admin_dashboard/internal/models"
)

type Deps struct {
	Auth     *AuthHTTP
	Clients  *ClientsHTTP
	Tags     *TagsHTTP
	Payments *PaymentsHTTP
	Rate     *RateHTTP
	Health   *HealthHTTP
	Bearer   *middleware.BearerAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	api := e.Group("/api")
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/auth/refresh-token", d.Auth.RefreshToken)

	// Middleware is attached per route. Groups sharing the /api prefix would
	// each claim /api/* for unmatched paths and turn a 404 into a 401 or 403.
	authed := d.Bearer.RequireAuth
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api.GET("/clients", d.Clients.GetClients, authed)
	api.GET("/clients/search", d.Clients.SearchClients, authed)
	api.GET("/clients/:id", d.Clients.GetClient, authed)
	api.POST("/clients", d.Clients.CreateClient, authed, adminOnly)
	api.PUT("/clients/:id", d.Clients.UpdateClient, authed, adminOnly)
	api.DELETE("/clients/:id", d.Clients.DeleteClient, authed, adminOnly)

	api.GET("/tags", d.Tags.GetTags, authed)
	api.GET("/tags/:id", d.Tags.GetTag, authed)
	api.POST("/tags", d.Tags.CreateTag, authed, adminOnly)
	api.PUT("/tags/:id", d.Tags.UpdateTag, authed, adminOnly)
	api.DELETE("/tags/:id", d.Tags.DeleteTag, authed, adminOnly)

	api.GET("/payments", d.Payments.GetPayments, authed)

	api.GET("/rate", d.Rate.GetRate, authed)
	api.POST("/rate", d.Rate.UpdateRate, authed, adminOnly)
}
