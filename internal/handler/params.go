package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/middleware"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

// dateLayouts are the accepted formats for event dates.  Values without a
// zone are taken as UTC.
var dateLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInputf("invalid id")
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter.
func queryID(c echo.Context, name string) (*uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, apperr.InvalidInputf("invalid %s", name)
	}
	return &id, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.InvalidInputf("date must be formatted as YYYY-MM-DD HH:MM:SS or RFC 3339")
}

// missingFields reports the names whose values are nil, in order, as a
// single InvalidInput error.
func missingFields(fields []string, present []bool) error {
	var missing []string
	for i, ok := range present {
		if !ok {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperr.InvalidInputf("missing required fields: %s", strings.Join(missing, ", "))
}

func currentSession(c echo.Context) (service.Session, bool) {
	sess, ok := c.Get(middleware.SessionKey).(service.Session)
	return sess, ok
}

func currentUserID(c echo.Context) uint64 {
	id, _ := c.Get(middleware.UserIDKey).(uint64)
	return id
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.InvalidInputf("invalid body")
	}
	return nil
}
