package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/Skotchmaster/beauty_shop/internal/payment"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	middleware "github.com/Skotchmaster/beauty_shop/pkg/middleware/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errUnauthorized = errors.New("unauthorized")

// ErrorHandler renders every error as {"success": false, "message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := map[string]any{"success": false, "message": http.StatusText(code)}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			body["message"] = m
		case map[string]any:
			for k, v := range m {
				body[k] = v
			}
		case error:
			body["message"] = m.Error()
		default:
			body["message"] = http.StatusText(code)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}

func GetID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, errUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a uuid", name)
	}
	return id, nil
}

// fail logs err under event and converts it to the matching HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	var perr *payment.ProviderError
	switch {
	case errors.As(err, &perr):
		l.Warn(event, "status", 400, "reason", "payment provider rejected", "provider_status", perr.StatusCode, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"message": providerMessage(perr),
			"code":    perr.Key,
			"details": perr.StatusCode,
		})
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrPaymentNotCompleted):
		l.Warn(event, "status", 400, "reason", "invalid request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGateway):
		l.Error(event, "status", 502, "reason", "payment gateway unavailable", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
	}
	l.Error(event, "status", 500, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func providerMessage(e *payment.ProviderError) string {
	if e.Detail != "" {
		return e.Detail
	}
	return "payment provider error"
}

func unauthorized(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 401, "reason", "no user in context", "error", err)
	return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, login again")
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", 400, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func fromFileHeader(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func formValue(form *multipart.Form, field string) (string, bool) {
	if form == nil {
		return "", false
	}
	if v := form.Value[field]; len(v) > 0 {
		return v[0], true
	}
	return "", false
}
