// internal/app/features/gruposetcrud/operations.go
package gruposetcrud

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/app/system/keyfilter"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// read filters by the query string. GetById yields the first match or nil;
// the other read types yield the full array. Reads never 404.
func (d *Dispatcher) read(ctx context.Context, t Target, p Process) (result, error) {
	f, err := keyfilter.Build(keyfilter.FromQuery(p.Query))
	if err != nil {
		return result{}, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Read(), d.Log, "gruposet read")
	defer cancel()

	docs, err := t.Backend.Read(ctx, f)
	if err != nil {
		return result{}, err
	}

	if p.ProcessType == "GetById" {
		if len(docs) == 0 {
			return result{
				Status:     http.StatusOK,
				MessageUSR: "No record matches the given key",
				DataRes:    nil,
			}, nil
		}
		return result{
			Status:     http.StatusOK,
			MessageUSR: "Record found",
			DataRes:    docs[0],
		}, nil
	}
	return result{
		Status:     http.StatusOK,
		MessageUSR: "The read succeeded",
		DataRes:    docs,
	}, nil
}

// create inserts one or many records from body.data, body.gruposet or the
// raw body.
func (d *Dispatcher) create(ctx context.Context, t Target, p Process) (result, error) {
	changes, err := keyfilter.ParseRecords(keyfilter.Payload(p.Body))
	if err != nil {
		return result{}, err
	}

	now := d.now()
	docs := make([]models.GrupoSet, 0, len(changes))
	for _, c := range changes {
		g, err := keyfilter.NewRecord(c, p.LoggedUser, now, d.newID)
		if err != nil {
			return result{}, err
		}
		docs = append(docs, g)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), d.Log, "gruposet create")
	defer cancel()

	created, err := t.Backend.Create(ctx, docs)
	if err != nil {
		return result{}, storeFailure(err, "")
	}
	return result{
		Status:     http.StatusCreated,
		MessageUSR: "Created " + strconv.Itoa(len(created)) + " record(s)",
		DataRes:    created,
	}, nil
}

// update applies a partial change to the record named by the key in the
// body. A key-changing update first checks the new key is free.
func (d *Dispatcher) update(ctx context.Context, t Target, p Process) (result, error) {
	if len(p.Body) == 0 {
		return result{}, emptyBody()
	}
	k, err := keyfilter.RequireKey(p.Body)
	if err != nil {
		return result{}, err
	}

	var changes models.Changes
	raw, hasData := p.Body["data"]
	switch {
	case hasData && raw != nil:
		m, ok := raw.(map[string]any)
		if !ok {
			return result{}, apperr.Validation(
				"body.data must be an object with the fields to change",
				"body.data is not an object",
			)
		}
		if changes, err = keyfilter.ParseChanges(m); err != nil {
			return result{}, err
		}
	case t.BodyAsChanges:
		if changes, err = keyfilter.ParseChanges(withoutData(p.Body)); err != nil {
			return result{}, err
		}
	}
	changes.Mod = keyfilter.Stamp(d.now(), p.LoggedUser)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Write(), d.Log, "gruposet update")
	defer cancel()

	if newKey := changes.ApplyKey(k); newKey != k {
		exists, err := t.Backend.Exists(ctx, newKey)
		if err != nil {
			return result{}, err
		}
		if exists {
			return result{}, apperr.Conflict(
				"A record with the new key already exists",
				"key-changing update rejected: target key is taken",
			)
		}
	}

	updated, err := t.Backend.Update(ctx, k, changes)
	if err != nil {
		return result{}, storeFailure(err, "No record found to update")
	}
	return result{
		Status:     http.StatusCreated,
		MessageUSR: "The update succeeded",
		DataRes:    updated,
	}, nil
}

// softDelete changes the record's flags according to the backend policy.
func (d *Dispatcher) softDelete(ctx context.Context, t Target, p Process) (result, error) {
	if len(p.Body) == 0 {
		return result{}, emptyBody()
	}
	k, err := keyfilter.RequireKey(p.Body)
	if err != nil {
		return result{}, err
	}
	stamp := keyfilter.Stamp(d.now(), p.LoggedUser)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Write(), d.Log, "gruposet soft delete")
	defer cancel()

	g, err := t.Backend.SoftDelete(ctx, k, t.SoftDelete, stamp)
	if err != nil {
		return result{}, storeFailure(err, "No record found to mark as deleted")
	}

	msg := "Record deactivated (logical delete)"
	if g.Activo {
		msg = "Record reactivated"
	}
	return result{
		Status:     http.StatusCreated,
		MessageUSR: msg,
		MessageDEV: "soft-delete policy: " + string(t.SoftDelete),
		DataRes:    g,
	}, nil
}

// hardDelete removes the record permanently.
func (d *Dispatcher) hardDelete(ctx context.Context, t Target, p Process) (result, error) {
	if len(p.Body) == 0 {
		return result{}, emptyBody()
	}
	k, err := keyfilter.RequireKey(p.Body)
	if err != nil {
		return result{}, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Write(), d.Log, "gruposet hard delete")
	defer cancel()

	g, err := t.Backend.HardDelete(ctx, k)
	if err != nil {
		return result{}, storeFailure(err, "No record found to delete")
	}
	return result{
		Status:     http.StatusCreated,
		MessageUSR: "Record deleted permanently",
		DataRes:    g,
	}, nil
}

// withoutData drops a null "data" member so the rest of the body can be
// read as the change set.
func withoutData(body map[string]any) map[string]any {
	if _, ok := body["data"]; !ok {
		return body
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k != "data" {
			out[k] = v
		}
	}
	return out
}

func emptyBody() error {
	return apperr.Validation("The request body is empty", "no data was received in the body")
}

// storeFailure classifies a store error. Unclassified errors pass through
// and become Internal at the dispatcher.
func storeFailure(err error, notFoundUSR string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return apperr.NotFound(notFoundUSR, err.Error())
	case errors.Is(err, models.ErrDuplicateKey):
		return apperr.Conflict("A record with this key already exists", err.Error())
	case errors.Is(err, models.ErrConcurrentUpdate):
		return apperr.Conflict("The record was modified concurrently; reload and retry", err.Error())
	}
	return err
}
