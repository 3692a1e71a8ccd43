// Package bitacora builds the per-request operation log ("bitácora") and the
// uniform response envelope projected from it.
//
// A Bitacora is an immutable value: With returns a new log with one more
// entry, so operations hand results back to the dispatcher instead of
// mutating a shared object.
package bitacora

import (
	"net/http"
	"reflect"

	"github.com/google/uuid"
)

// Entry is one (data, outcome) record in the log.
type Entry struct {
	Success      bool   `json:"success"`
	Status       int    `json:"status"`
	Process      string `json:"process"`
	ProcessType  string `json:"processType"`
	DBServer     string `json:"dbServer,omitempty"`
	Method       string `json:"method"`
	API          string `json:"api"`
	MessageUSR   string `json:"messageUSR"`
	MessageDEV   string `json:"messageDEV,omitempty"`
	CountDataRes int    `json:"countDataRes"`
	DataRes      any    `json:"dataRes"`
}

// Bitacora accumulates the outcome of one dispatch call.
type Bitacora struct {
	id          string
	processType string
	dbServer    string
	loggedUser  string

	status     int
	success    bool
	messageUSR string
	messageDEV string
	dataRes    any

	entries []Entry
}

// New starts an empty log for a request.
func New(processType, dbServer, loggedUser string) Bitacora {
	return Bitacora{
		id:          uuid.NewString(),
		processType: processType,
		dbServer:    dbServer,
		loggedUser:  loggedUser,
	}
}

func (b Bitacora) ID() string          { return b.id }
func (b Bitacora) ProcessType() string { return b.processType }
func (b Bitacora) DBServer() string    { return b.dbServer }
func (b Bitacora) LoggedUser() string  { return b.loggedUser }
func (b Bitacora) Success() bool       { return b.success }

// Status returns the status of the latest entry, or 200 when there is none.
func (b Bitacora) Status() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// Entries returns a copy of the recorded entries.
func (b Bitacora) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// With returns a new log with e appended; the latest entry decides the
// log's status, outcome, messages and payload.
func (b Bitacora) With(e Entry) Bitacora {
	if e.ProcessType == "" {
		e.ProcessType = b.processType
	}
	if e.DBServer == "" {
		e.DBServer = b.dbServer
	}
	if e.CountDataRes == 0 {
		e.CountDataRes = Count(e.DataRes)
	}

	out := b
	out.entries = make([]Entry, 0, len(b.entries)+1)
	out.entries = append(out.entries, b.entries...)
	out.entries = append(out.entries, e)

	out.status = e.Status
	out.success = e.Success
	out.messageUSR = e.MessageUSR
	out.messageDEV = e.MessageDEV
	out.dataRes = e.DataRes
	return out
}

// Count reports how many records a payload holds: slice length, 0 for nil,
// 1 otherwise.
func Count(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len()
	case reflect.Pointer, reflect.Map, reflect.Interface:
		if rv.IsNil() {
			return 0
		}
	}
	return 1
}
