package adapthttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"labdiet/internal/app"
	"labdiet/internal/domain"

	"github.com/labstack/echo/v4"
)

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]any{"error": err.Error()})
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrAnalysisNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrInvalidReport), errors.Is(err, app.ErrInvalidSampleCount):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidAdminKey):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrAdminDisabled):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every error as {"error": "..."}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := statusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, map[string]any{"error": msg})
}

func intQuery(c echo.Context, key string, fallback int) int {
	v := c.QueryParam(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func bodyLimit(n int64) string {
	return strconv.FormatInt(n, 10) + "B"
}
