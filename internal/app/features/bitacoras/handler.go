// internal/app/features/bitacoras/handler.go
package bitacoras

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Querier reads stored bitácoras.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Handler lists stored bitácoras. Store is nil when audit_log keeps them
// out of the database.
type Handler struct {
	Store  Querier
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store Querier, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		ErrLog: errLog,
		Log:    logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /bitacora?processType=&dbServer=&loggedUser=&success=&from=&to=&limit=  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList answers the matching events, newest first. from/to accept
// RFC 3339 or YYYY-MM-DD (UTC); a date-only "to" covers the whole day.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		errorsfeature.RenderError(w, http.StatusNotFound,
			"Bitácora storage is disabled; set audit_log to 'all' or 'db'")
		return
	}

	f, err := parseFilter(r.URL.Query())
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bitácora query rejected", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "bitacora query")
	defer cancel()

	events, err := h.Store.Query(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "bitácora query failed", err, "The bitácora query did not complete")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	errorsfeature.RenderJSON(w, http.StatusOK, events)
}

func parseFilter(q url.Values) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		ProcessType: strings.TrimSpace(q.Get("processType")),
		DBServer:    strings.ToLower(strings.TrimSpace(q.Get("dbServer"))),
		LoggedUser:  strings.TrimSpace(q.Get("loggedUser")),
		Limit:       defaultLimit,
	}

	if s := strings.TrimSpace(q.Get("success")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("success must be true or false, got %q", s)
		}
		f.Success = &b
	}

	if s := strings.TrimSpace(q.Get("from")); s != "" {
		t, _, err := parseTime(s)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("to")); s != "" {
		t, dateOnly, err := parseTime(s)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.EndTime = &t
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, fmt.Errorf("to must not be before from")
	}

	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			return f, fmt.Errorf("limit must be a positive integer, got %q", s)
		}
		f.Limit = min(n, maxLimit)
	}
	return f, nil
}

func parseTime(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", s)
}
