package http

import (
	"strings"
	"time"

	"chama-ledger/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// actorID prefers the id validated by the idempotency middleware and falls
// back to the raw header for routes mounted without it.
func actorID(c echo.Context) string {
	if v, ok := c.Get(middleware.ContextActorID).(string); ok && v != "" {
		return v
	}
	return strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
}

// queryDate parses an optional YYYY-MM-DD query value as a UTC midnight.
func queryDate(c echo.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validLoanID(id string) bool { return reHex32.MatchString(id) }
