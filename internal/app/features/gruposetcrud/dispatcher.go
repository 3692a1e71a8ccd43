// internal/app/features/gruposetcrud/dispatcher.go
package gruposetcrud

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/app/system/bitacora"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Process describes one call to the action endpoint.
type Process struct {
	ProcessType string
	LoggedUser  string
	DBServer    string
	Query       url.Values
	Body        map[string]any
}

// result is what an operation hands back on success.
type result struct {
	Status     int
	MessageUSR string
	MessageDEV string
	DataRes    any
}

type operation struct {
	process string
	method  string
	api     string
	// failUSR is the user message for unclassified failures.
	failUSR string
	run     func(d *Dispatcher, ctx context.Context, t Target, p Process) (result, error)
}

var (
	readOp = operation{
		process: "Read ZTGRUPOSET",
		method:  "GET",
		api:     "/crud?ProcessType=Get*",
		failUSR: "The read did not succeed",
		run:     (*Dispatcher).read,
	}
	createOp = operation{
		process: "Create ZTGRUPOSET",
		method:  "POST",
		api:     "/crud?ProcessType=Create",
		failUSR: "The create did not succeed",
		run:     (*Dispatcher).create,
	}
	updateOp = operation{
		process: "Update ZTGRUPOSET",
		method:  "POST",
		api:     "/crud?ProcessType=UpdateOne",
		failUSR: "The update did not succeed",
		run:     (*Dispatcher).update,
	}
	softDeleteOp = operation{
		process: "Logical delete ZTGRUPOSET",
		method:  "POST",
		api:     "/crud?ProcessType=DeleteOne",
		failUSR: "The logical delete did not succeed",
		run:     (*Dispatcher).softDelete,
	}
	hardDeleteOp = operation{
		process: "Physical delete ZTGRUPOSET",
		method:  "POST",
		api:     "/crud?ProcessType=DeleteHard",
		failUSR: "The physical delete did not succeed",
		run:     (*Dispatcher).hardDelete,
	}
)

// operations maps ProcessType literals (exact match) to operations.
var operations = map[string]operation{
	"GetById":    readOp,
	"GetAll":     readOp,
	"GetSome":    readOp,
	"Create":     createOp,
	"AddOne":     createOp,
	"AddMany":    createOp,
	"UpdateOne":  updateOp,
	"UpdateMany": updateOp,
	"DeleteOne":  softDeleteOp,
	"DeleteHard": hardDeleteOp,
}

const catchUSR = "The process did not complete"

// Dispatcher routes a Process to one of the five operations on the
// selected backend.
type Dispatcher struct {
	Backends Registry
	Log      *zap.Logger
	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewDispatcher constructs a Dispatcher over the given backends.
func NewDispatcher(backends Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Backends: backends,
		Log:      logger,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Dispatcher) newID() string {
	if d.NewID == nil {
		return uuid.NewString()
	}
	return d.NewID()
}

// Dispatch runs p and returns the finished log. A non-nil failure means the
// log ends in a failed entry; its status is the response status. Panics
// raised below Dispatch are recovered into a 500 failure.
func (d *Dispatcher) Dispatch(ctx context.Context, p Process) (b bitacora.Bitacora, failure *apperr.Error) {
	b = bitacora.New(p.ProcessType, strings.ToLower(strings.TrimSpace(p.DBServer)), p.LoggedUser)

	op, known := operations[p.ProcessType]
	defer func() {
		if rec := recover(); rec != nil {
			d.Log.Error("gruposet dispatch panicked",
				zap.Any("panic", rec),
				zap.String("process_type", p.ProcessType),
				zap.String("db_server", p.DBServer),
				zap.Stack("stack"))
			failure = apperr.Internal(catchUSR, fmt.Errorf("panic: %v", rec))
			b = b.With(failEntry(op, failure))
		}
	}()

	if !known {
		failure = apperr.Validation("Invalid Process Type", "unrecognized process: "+p.ProcessType)
		return b.With(failEntry(op, failure)), failure
	}

	target, err := d.Backends.Lookup(p.DBServer)
	if err != nil {
		failure = apperr.As(err, op.failUSR)
		return b.With(failEntry(op, failure)), failure
	}

	res, err := op.run(d, ctx, target, p)
	if err != nil {
		failure = apperr.As(err, op.failUSR)
		if failure.Kind == apperr.KindInternal {
			d.Log.Error("gruposet operation failed",
				zap.String("process_type", p.ProcessType),
				zap.String("db_server", b.DBServer()),
				zap.Error(err))
		}
		return b.With(failEntry(op, failure)), failure
	}

	return b.With(bitacora.Entry{
		Success:    true,
		Status:     res.Status,
		Process:    op.process,
		Method:     op.method,
		API:        op.api,
		MessageUSR: res.MessageUSR,
		MessageDEV: res.MessageDEV,
		DataRes:    res.DataRes,
	}), nil
}

// Reject records a failure that happened before dispatch, such as an
// unreadable body.
func (d *Dispatcher) Reject(p Process, failure *apperr.Error) (bitacora.Bitacora, *apperr.Error) {
	b := bitacora.New(p.ProcessType, strings.ToLower(strings.TrimSpace(p.DBServer)), p.LoggedUser)
	return b.With(failEntry(operations[p.ProcessType], failure)), failure
}

func failEntry(op operation, e *apperr.Error) bitacora.Entry {
	return bitacora.Entry{
		Success:    false,
		Status:     e.Status(),
		Process:    op.process,
		Method:     op.method,
		API:        op.api,
		MessageUSR: e.User,
		MessageDEV: e.Dev,
	}
}
