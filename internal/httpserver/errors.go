package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
	"github.com/Skotchmaster/admin_dashboard/pkg/observability"
)

const MIMEProblemJSON = "application/problem+json"

type Problem struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:        "https://tools.ietf.org/html/rfc7235#section-3.1",
	http.StatusForbidden:           "https://tools.ietf.org/html/rfc7231#section-6.5.3",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc7231#section-6.5.4",
	http.StatusConflict:            "https://tools.ietf.org/html/rfc7231#section-6.5.8",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc7231#section-6.6.1",
}

// serviceError logs err and converts it into an *echo.HTTPError carrying err as Internal.
func serviceError(l *slog.Logger, event string, err error) error {
	var code int
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred").SetInternal(err)
	}
	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

// NewErrorHandler renders every error as problem+json. 5xx errors are
// reported to Sentry; their detail is only exposed when showInternal is set.
func NewErrorHandler(showInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred").SetInternal(err)
		}

		code := he.Code
		p := Problem{
			Type:     problemTypes[code],
			Title:    http.StatusText(code),
			Status:   code,
			Detail:   messageOf(he),
			Instance: c.Request().URL.Path,
		}
		if p.Type == "" {
			p.Type = "about:blank"
		}

		var verr *service.ValidationError
		if errors.As(err, &verr) {
			p.Title = "Validation Error"
			p.Errors = make(map[string][]string, len(verr.Fields))
			for k, v := range verr.Fields {
				p.Errors[k] = []string{v}
			}
		}

		if code >= http.StatusInternalServerError {
			observability.CaptureError(err, map[string]string{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			if showInternal {
				p.Detail = err.Error()
			}
		}

		c.Response().Header().Set(echo.HeaderContentType, MIMEProblemJSON)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, p)
		}
		if err != nil {
			logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", err)
		}
	}
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case nil:
		return http.StatusText(he.Code)
	case error:
		return m.Error()
	default:
		return fmt.Sprint(m)
	}
}
