// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"

	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	"github.com/cinnalovers/secgruposet/internal/app/system/bitacora"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Modes for Config.Mode.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Mode is "all", "db", "log" or "off". Anything else is treated as "all".
	Mode string
}

// EventStore persists audit events; *audit.Store implements it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records every finished bitácora to MongoDB (via EventStore) and
// structured logs (via zap), as configured.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case the db
// destination is skipped.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// not read here; chi's RealIP middleware has already applied them.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// eventFrom summarizes b. The last entry carries the outcome.
func eventFrom(r *http.Request, b bitacora.Bitacora) audit.Event {
	e := audit.Event{
		BitacoraID:  b.ID(),
		ProcessType: b.ProcessType(),
		DBServer:    b.DBServer(),
		LoggedUser:  b.LoggedUser(),
		IP:          getClientIP(r),
		Success:     b.Success(),
		Status:      b.Status(),
	}
	if r != nil {
		e.UserAgent = r.UserAgent()
	}
	if entries := b.Entries(); len(entries) > 0 {
		last := entries[len(entries)-1]
		e.Process = last.Process
		e.MessageUSR = last.MessageUSR
		e.MessageDEV = last.MessageDEV
		e.Count = last.CountDataRes
	}
	return e
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event, entries int) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("bitacora_id", event.BitacoraID),
		zap.String("process_type", event.ProcessType),
		zap.String("db_server", event.DBServer),
		zap.String("logged_user", event.LoggedUser),
		zap.Bool("success", event.Success),
		zap.Int("status", event.Status),
		zap.Int("entries", entries),
		zap.String("ip", event.IP),
	}
	if entries > 0 {
		fields = append(fields,
			zap.String("process", event.Process),
			zap.Int("count", event.Count),
		)
	}
	if event.MessageDEV != "" {
		fields = append(fields, zap.String("message_dev", event.MessageDEV))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Record logs b based on configuration. If the logger is nil, this is a
// no-op (allows tests to use nil audit logger).
func (l *Logger) Record(r *http.Request, b bitacora.Bitacora) {
	if l == nil {
		return
	}
	mode := l.config.Mode
	if mode == ModeOff {
		return
	}

	event := eventFrom(r, b)

	if mode != ModeDB {
		l.logToZap(event, len(b.Entries()))
	}

	if mode != ModeLog && l.store != nil {
		parent := context.Background()
		if r != nil {
			parent = context.WithoutCancel(r.Context())
		}
		ctx, cancel := timeouts.WithTimeout(parent, timeouts.Write(), l.zapLog, "audit write")
		defer cancel()
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("bitacora_id", event.BitacoraID),
			)
		}
	}
}
