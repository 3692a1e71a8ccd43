// internal/app/features/gruposets/records.go
package gruposets

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/app/system/keyfilter"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/google/uuid"
)

// ServeGetAll handles GET /getall. Query parameters filter the result.
func (h *Handler) ServeGetAll(w http.ResponseWriter, r *http.Request) {
	f, err := keyfilter.Build(keyfilter.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "gruposets getall: bad filter", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "gruposets getall")
	defer cancel()

	docs, err := h.Store.Read(ctx, f)
	if err != nil {
		h.fail(w, r, "gruposets getall: read failed", err, "")
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, docs)
}

// ServeGetByID handles GET /getbyid. The full key is required; a key with
// no record yields null.
func (h *Handler) ServeGetByID(w http.ResponseWriter, r *http.Request) {
	k, err := keyfilter.RequireKey(keyfilter.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "gruposets getbyid: bad key", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "gruposets getbyid")
	defer cancel()

	docs, err := h.Store.Read(ctx, k.Filter())
	if err != nil {
		h.fail(w, r, "gruposets getbyid: read failed", err, "")
		return
	}
	if len(docs) == 0 {
		errorsfeature.RenderJSON(w, http.StatusOK, nil)
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, docs[0])
}

// HandleAddOne handles POST /addone. The body is one record or an array of
// records, under data, under gruposet, or as the body itself.
func (h *Handler) HandleAddOne(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		h.fail(w, r, "gruposets addone: bad body", err, "")
		return
	}
	if m, ok := payload.(map[string]any); ok {
		payload = keyfilter.Payload(m)
	}
	changes, err := keyfilter.ParseRecords(payload)
	if err != nil {
		h.fail(w, r, "gruposets addone: bad records", err, "")
		return
	}

	user := r.URL.Query().Get("LoggedUser")
	now := h.now()
	docs := make([]models.GrupoSet, 0, len(changes))
	for _, c := range changes {
		g, err := keyfilter.NewRecord(c, user, now, h.newID)
		if err != nil {
			h.fail(w, r, "gruposets addone: incomplete record", err, "")
			return
		}
		docs = append(docs, g)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "gruposets addone")
	defer cancel()

	created, err := h.Store.Create(ctx, docs)
	if err != nil {
		h.fail(w, r, "gruposets addone: insert failed", err, "")
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, created)
}

// HandleUpdateOne handles POST /updateone. The key comes from the query;
// the changes come from body.data or, failing that, the whole body.
func (h *Handler) HandleUpdateOne(w http.ResponseWriter, r *http.Request) {
	k, err := keyfilter.RequireKey(keyfilter.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "gruposets updateone: bad key", err, "")
		return
	}
	payload, err := decodePayload(r)
	if err != nil {
		h.fail(w, r, "gruposets updateone: bad body", err, "")
		return
	}
	body, ok := payload.(map[string]any)
	if !ok || len(body) == 0 {
		h.fail(w, r, "gruposets updateone: empty body",
			apperr.Validation("The request body is empty", "updateone needs an object body"), "")
		return
	}
	if data, ok := body["data"].(map[string]any); ok {
		body = data
	}
	c, err := keyfilter.ParseChanges(body)
	if err != nil {
		h.fail(w, r, "gruposets updateone: bad changes", err, "")
		return
	}
	c.Mod = keyfilter.Stamp(h.now(), r.URL.Query().Get("LoggedUser"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "gruposets updateone")
	defer cancel()

	g, err := h.Store.Update(ctx, k, c)
	if err != nil {
		h.fail(w, r, "gruposets updateone: update failed", err, "No record found to update")
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, g)
}

// HandleDeleteOne handles POST /deleteone: a logical delete of the record
// named by the query key.
func (h *Handler) HandleDeleteOne(w http.ResponseWriter, r *http.Request) {
	k, err := keyfilter.RequireKey(keyfilter.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "gruposets deleteone: bad key", err, "")
		return
	}
	stamp := keyfilter.Stamp(h.now(), r.URL.Query().Get("LoggedUser"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "gruposets deleteone")
	defer cancel()

	g, err := h.Store.SoftDelete(ctx, k, h.policy(), stamp)
	if err != nil {
		h.fail(w, r, "gruposets deleteone: soft delete failed", err, "No record found to mark as deleted")
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, g)
}

// HandleDeleteHard handles POST /deletehard.
func (h *Handler) HandleDeleteHard(w http.ResponseWriter, r *http.Request) {
	k, err := keyfilter.RequireKey(keyfilter.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "gruposets deletehard: bad key", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "gruposets deletehard")
	defer cancel()

	if _, err := h.Store.HardDelete(ctx, k); err != nil {
		h.fail(w, r, "gruposets deletehard: delete failed", err, "No record found to delete")
		return
	}
	errorsfeature.RenderJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// fail classifies err and writes it inline. notFoundUSR replaces the user
// message when the store reports a missing record.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, notFoundUSR string) {
	var user string
	switch {
	case errors.Is(err, models.ErrNotFound) && notFoundUSR != "":
		user = notFoundUSR
	case errors.Is(err, models.ErrDuplicateKey):
		user = "A record with this key already exists"
	case errors.Is(err, models.ErrConcurrentUpdate):
		user = "The record was modified concurrently; reload and retry"
	default:
		user = apperr.As(err, "The process did not complete").User
	}
	h.ErrLog.LogInline(w, r, msg, err, user)
}

func (h *Handler) policy() models.SoftDeletePolicy {
	if h.SoftDelete == "" {
		return models.SoftDeleteSet
	}
	return h.SoftDelete
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handler) newID() string {
	if h.NewID == nil {
		return uuid.NewString()
	}
	return h.NewID()
}

// decodePayload reads a JSON body of any shape. An empty body is nil.
func decodePayload(r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperr.Validation("The request body is not valid JSON", err.Error())
	}
	return v, nil
}
