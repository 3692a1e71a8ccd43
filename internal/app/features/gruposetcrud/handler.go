// internal/app/features/gruposetcrud/handler.go
package gruposetcrud

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/app/system/auditlog"
	"github.com/cinnalovers/secgruposet/internal/app/system/bitacora"
	"go.uber.org/zap"
)

// Handler serves the CRUD action endpoint.
type Handler struct {
	Dispatcher *Dispatcher
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a CRUD Handler. audit may be nil.
func NewHandler(d *Dispatcher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Dispatcher: d,
		Audit:      audit,
		Log:        logger,
	}
}

// ServeCRUD handles POST /crud?ProcessType=&LoggedUser=&DBServer=.
//
// The response is always the bitácora envelope; the HTTP status equals the
// envelope status (200 reads, 201 writes, 4xx/500 failures).
func (h *Handler) ServeCRUD(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := Process{
		ProcessType: q.Get("ProcessType"),
		LoggedUser:  q.Get("LoggedUser"),
		DBServer:    q.Get("DBServer"),
		Query:       q,
	}

	var (
		b       bitacora.Bitacora
		failure *apperr.Error
	)
	body, err := decodeBody(r)
	if err != nil {
		h.Log.Warn("gruposet crud: unreadable body", zap.Error(err))
		b, failure = h.Dispatcher.Reject(p, apperr.Validation("The request body is not valid JSON", err.Error()))
	} else {
		p.Body = body
		b, failure = h.Dispatcher.Dispatch(r.Context(), p)
	}

	h.Audit.Record(r, b)

	if failure != nil {
		errorsfeature.RenderJSON(w, b.Status(), b.Fail(failure.Kind.String()))
		return
	}
	errorsfeature.RenderJSON(w, b.Status(), b.OK())
}

// decodeBody reads a JSON object body. An empty body is an empty map.
// Numbers are kept as json.Number so integer keys survive exactly.
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	if r.Body == nil {
		return body, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
