package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/admin_dashboard/internal/middleware"
	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/internal/testutil"
	"github.com/Skotchmaster/admin_dashboard/internal/transport"
	"github.com/Skotchmaster/admin_dashboard/pkg/hash"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	viewerEmail   = "viewer@example.com"
	viewerPass    = "Viewer123!"
)

var tokenCfg = service.TokenConfig{
	Secret:   []byte("http-test-secret"),
	Issuer:   "admin-dashboard",
	Audience: "admin-dashboard-clients",
}

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
	auth *service.AuthService
	deps *Deps
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	require.NoError(t, r.Seed(ctx, repo.SeedAdmin{Email: adminEmail, Password: adminPassword}))

	pw, err := hash.HashPassword(viewerPass)
	require.NoError(t, err)
	_, err = r.CreateUserIfNotExists(ctx, &models.User{UserName: "viewer", Email: viewerEmail, PasswordHash: pw})
	require.NoError(t, err)

	authSvc := service.NewAuthService(r, tokenCfg, nil)
	deps := &Deps{
		Auth:     &AuthHTTP{Svc: authSvc},
		Clients:  &ClientsHTTP{Svc: &service.ClientService{Repo: r}},
		Tags:     &TagsHTTP{Svc: &service.TagService{Repo: r}},
		Payments: &PaymentsHTTP{Svc: &service.PaymentService{Repo: r}},
		Rate:     &RateHTTP{Svc: &service.RateService{Repo: r}},
		Health:   &HealthHTTP{Checks: map[string]Check{}},
		Bearer:   middleware.NewBearerAuth(tokenCfg.Secret, tokenCfg.Issuer, tokenCfg.Audience),
	}

	e := echo.New()
	e.HTTPErrorHandler = NewErrorHandler(false)
	Register(e, deps)
	return &testServer{e: e, repo: r, auth: authSvc, deps: deps}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(b)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) transport.AuthTokenResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", transport.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out transport.AuthTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	assert.Equal(t, MIMEProblemJSON, rec.Header().Get(echo.HeaderContentType))
	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, rec.Code, p.Status)
	return p
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == refreshCookieName {
			return ck
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", transport.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	var out transport.AuthTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Token)
	assert.NotEmpty(t, out.RefreshToken)

	ck := refreshCookie(rec)
	require.NotNil(t, ck)
	assert.Equal(t, out.RefreshToken, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, refreshCookiePath, ck.Path)

	for _, req := range []transport.LoginRequest{
		{Email: adminEmail, Password: "wrong"},
		{Email: "ghost@example.com", Password: adminPassword},
	} {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		p := decodeProblem(t, rec)
		assert.Equal(t, service.MsgInvalidCredentials, p.Detail)
		assert.Equal(t, "Unauthorized", p.Title)
	}

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", transport.LoginRequest{Email: adminEmail})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	first := s.login(t, adminEmail, adminPassword)

	rec := s.do(t, http.MethodPost, "/api/auth/refresh-token", "", transport.RefreshTokenRequest{Token: first.Token, RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second transport.AuthTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the old refresh token is gone after rotation
	rec = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", transport.RefreshTokenRequest{Token: first.Token, RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, service.MsgInvalidToken, decodeProblem(t, rec).Detail)
	ck := refreshCookie(rec)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)

	// refresh token taken from the cookie
	rec = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", transport.RefreshTokenRequest{Token: second.Token},
		&http.Cookie{Name: refreshCookieName, Value: second.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var third transport.AuthTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &third))

	rec = s.do(t, http.MethodGet, "/api/clients", third.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingSave struct{ *repo.GormRepo }

func (failingSave) Save(context.Context, *models.User) error { return errors.New("disk full") }

func TestRefreshToken_PersistFailureIs500(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	first := s.login(t, adminEmail, adminPassword)

	s.auth.Store = failingSave{GormRepo: s.repo}
	rec := s.do(t, http.MethodPost, "/api/auth/refresh-token", "", transport.RefreshTokenRequest{Token: first.Token, RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodeProblem(t, rec)
	assert.NotContains(t, p.Detail, "disk full")
}

func TestLogin_PersistFailureIs500(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	s.auth.Store = failingSave{GormRepo: s.repo}
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", transport.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, decodeProblem(t, rec).Detail, "disk full")
	assert.Nil(t, refreshCookie(rec))
}

func TestProtectedRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword).Token
	viewer := s.login(t, viewerEmail, viewerPass).Token

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/clients", status: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/api/clients", token: "abc", status: http.StatusUnauthorized},
		{name: "viewer reads", method: http.MethodGet, path: "/api/clients", token: viewer, status: http.StatusOK},
		{name: "viewer cannot create", method: http.MethodPost, path: "/api/clients", token: viewer,
			body: transport.ClientRequest{Name: "X", Email: "x@example.com"}, status: http.StatusForbidden},
		{name: "viewer cannot set rate", method: http.MethodPost, path: "/api/rate", token: viewer,
			body: transport.UpdateRateRequest{Value: 3}, status: http.StatusForbidden},
		{name: "bad id", method: http.MethodGet, path: "/api/clients/abc", token: admin, status: http.StatusBadRequest},
		{name: "missing client", method: http.MethodGet, path: "/api/clients/999", token: admin, status: http.StatusNotFound},
		{name: "missing tag", method: http.MethodDelete, path: "/api/tags/999", token: admin, status: http.StatusNotFound},
		{name: "payments default", method: http.MethodGet, path: "/api/payments", token: viewer, status: http.StatusOK},
		{name: "payments bad take", method: http.MethodGet, path: "/api/payments?take=abc", token: viewer, status: http.StatusBadRequest},
		{name: "payments take too large", method: http.MethodGet, path: "/api/payments?take=1000", token: viewer, status: http.StatusBadRequest},
		{name: "rate", method: http.MethodGet, path: "/api/rate", token: viewer, status: http.StatusOK},
		{name: "unknown path anonymous", method: http.MethodGet, path: "/api/nope", status: http.StatusNotFound},
		{name: "unknown path viewer", method: http.MethodGet, path: "/api/nope", token: viewer, status: http.StatusNotFound},
		{name: "unknown path admin", method: http.MethodPost, path: "/api/nope", token: admin, status: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status >= 400 {
				decodeProblem(t, rec)
			}
		})
	}
}

func TestClientsEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword).Token

	rec := s.do(t, http.MethodPost, "/api/clients", admin, transport.ClientRequest{Name: "Acme", Email: "acme@example.com", Balance: 50})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "/api/clients/"+jsonNumber(created.ID), rec.Header().Get(echo.HeaderLocation))

	rec = s.do(t, http.MethodPost, "/api/clients", admin, transport.ClientRequest{Name: "", Email: "bad"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "Validation Error", p.Title)
	assert.Contains(t, p.Errors, "name")
	assert.Contains(t, p.Errors, "email")

	rec = s.do(t, http.MethodPut, "/api/clients/"+jsonNumber(created.ID), admin, transport.ClientRequest{Name: "Acme Corp", Email: "acme@example.com", Balance: 75})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/clients/search?q=corp", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found transport.SearchResponse[models.Client]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Equal(t, 1, found.Total)
	assert.Equal(t, "Acme Corp", found.Items[0].Name)

	rec = s.do(t, http.MethodDelete, "/api/clients/"+jsonNumber(created.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/clients/"+jsonNumber(created.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagsAndRateEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword).Token

	rec := s.do(t, http.MethodPost, "/api/tags", admin, transport.TagRequest{Name: "VIP", Color: "#FFFFFF"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", decodeProblem(t, rec).Title)

	rec = s.do(t, http.MethodPost, "/api/tags", admin, transport.TagRequest{Name: "Partner", Color: "#123456"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tag models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))

	rec = s.do(t, http.MethodPut, "/api/tags/"+jsonNumber(tag.ID), admin, transport.TagRequest{Name: "Partner", Color: "#654321"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/tags/"+jsonNumber(tag.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))
	assert.Equal(t, "#654321", tag.Color)

	rec = s.do(t, http.MethodPost, "/api/rate", admin, transport.UpdateRateRequest{Value: 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Errors, "value")

	rec = s.do(t, http.MethodPost, "/api/rate", admin, transport.UpdateRateRequest{Value: 42})
	require.Equal(t, http.StatusOK, rec.Code)
	var rate models.Rate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rate))
	assert.Equal(t, 42.0, rate.Value)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)

	s.deps.Health.Checks["db"] = func(context.Context) error { return errors.New("connection refused") }
	rec := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandler_HidesInternalDetail(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.HTTPErrorHandler = NewErrorHandler(false)
	e.GET("/boom", func(echo.Context) error { return errors.New("pq: password authentication failed") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "An unexpected error occurred", p.Detail)
	assert.Equal(t, "/boom", p.Instance)

	e.HTTPErrorHandler = NewErrorHandler(true)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, decodeProblem(t, rec).Detail, "password authentication failed")
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
