package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
	"github.com/Skotchmaster/admin_dashboard/pkg/tokens"
)

const (
	CtxUserName = "user_name"
	CtxRoles    = "roles"
	CtxClaims   = "claims"
)

type BearerAuth struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func NewBearerAuth(secret []byte, issuer, audience string) *BearerAuth {
	return &BearerAuth{Secret: secret, Issuer: issuer, Audience: audience}
}

// bearerToken reads "Authorization: Bearer <jwt>", falling back to the
// access_token query parameter.
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return c.QueryParam("access_token")
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.Secret, m.Issuer, m.Audience)
		if err != nil || claims == nil {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(CtxUserName, claims.Name)
		c.Set(CtxRoles, claims.Roles)
		c.Set(CtxClaims, claims)

		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if !claims.HasRole(role) {
				logging.FromContext(c.Request().Context()).Warn("auth_forbidden", "status", 403, "user", claims.Name, "required_role", role)
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func ClaimsFrom(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(CtxClaims).(*tokens.AccessClaims)
	return claims, ok && claims != nil
}
