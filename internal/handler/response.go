package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
)

// respond writes the standard envelope {"message": ..., "data": ...}.
// data is left out when it is nil or empty.
func respond(c echo.Context, status int, message string, data any) error {
	return writeEnvelope(c, status, message, "data", data)
}

// respondToken writes the envelope with the payload under "token".
func respondToken(c echo.Context, status int, message, token string) error {
	return writeEnvelope(c, status, message, "token", token)
}

func writeEnvelope(c echo.Context, status int, message, field string, payload any) error {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	body := map[string]any{"message": message}
	if !isEmpty(payload) {
		body[field] = payload
	}
	return c.JSON(status, body)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.String, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// respondError maps err to its status and writes the envelope.  Internal
// errors are logged and never shown to the client.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		slog.Default().Error("request failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"err", err)
	}
	return respond(c, apperr.Status(kind), apperr.Message(err), nil)
}

// HTTPErrorHandler renders errors that escape handlers (unknown routes,
// wrong methods, middleware failures) with the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = respond(c, he.Code, msg, nil)
		return
	}
	_ = respondError(c, err)
}
