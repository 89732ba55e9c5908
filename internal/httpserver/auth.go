package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/pkg/cookies"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		l.Warn("login_error", "status", 400, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if res.OK() {
			l.Error("login_error", "status", 500, "reason", "token issued but refresh token not persisted", "error", err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot login").SetInternal(err)
	}
	if !res.OK() {
		return echo.NewHTTPError(http.StatusUnauthorized, res.Message).SetInternal(res.Outcome.Err())
	}

	c.SetCookie(cookies.Create(refreshCookieName, res.RefreshToken, refreshCookiePath, res.RefreshExp))
	return c.JSON(http.StatusOK, transport.AuthTokenResponse{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// RefreshToken takes the refresh token from the body, or from the refresh
// cookie when the body omits it.
func (h *AuthHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh_token")

	var req transport.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = ck.Value
		}
	}

	res, err := h.Svc.Refresh(ctx, req.Token, req.RefreshToken)
	if err != nil {
		if res.OK() {
			l.Error("refresh_error", "status", 500, "reason", "token issued but rotation not persisted", "error", err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot refresh token").SetInternal(err)
	}
	if !res.OK() {
		c.SetCookie(cookies.Delete(refreshCookieName, refreshCookiePath))
		return echo.NewHTTPError(http.StatusUnauthorized, res.Message).SetInternal(res.Outcome.Err())
	}

	c.SetCookie(cookies.Create(refreshCookieName, res.RefreshToken, refreshCookiePath, res.RefreshExp))
	return c.JSON(http.StatusOK, transport.AuthTokenResponse{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}
