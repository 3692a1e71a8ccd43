package auditlog_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	"github.com/cinnalovers/secgruposet/internal/app/system/auditlog"
	"github.com/cinnalovers/secgruposet/internal/app/system/bitacora"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"github.com/cinnalovers/secgruposet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func finished(success bool, status int) bitacora.Bitacora {
	return bitacora.New("GetAll", "mongodb", "alice").With(bitacora.Entry{
		Success:    success,
		Status:     status,
		Process:    "Read",
		MessageUSR: "done",
		MessageDEV: "dev detail",
		DataRes:    []int{1, 2},
	})
}

// stallingStore blocks until its context ends, like a MongoDB that never
// answers server selection.
type stallingStore struct {
	hadDeadline bool
	err         error
}

func (s *stallingStore) Log(ctx context.Context, _ audit.Event) error {
	_, s.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	s.err = ctx.Err()
	return s.err
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	assert.NotPanics(t, func() {
		logger.Record(httptest.NewRequest("POST", "/", nil), finished(true, 200))
	})
}

func TestLogger_Record_ConfigOff(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Mode: auditlog.ModeOff})

	logger.Record(httptest.NewRequest("POST", "/", nil), finished(true, 200))

	assert.Zero(t, logs.Len(), "no log lines when mode is off")
}

func TestLogger_Record_Success(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Mode: auditlog.ModeLog})

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.0.0.1:5123"
	b := finished(true, 200)
	logger.Record(req, b)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, e.Level)
	ctx := e.ContextMap()
	assert.Equal(t, b.ID(), ctx["bitacora_id"])
	assert.Equal(t, "GetAll", ctx["process_type"])
	assert.Equal(t, "mongodb", ctx["db_server"])
	assert.Equal(t, "alice", ctx["logged_user"])
	assert.Equal(t, "10.0.0.1", ctx["ip"])
	assert.Equal(t, int64(2), ctx["count"])
}

func TestLogger_Record_IgnoresForwardingHeaders(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Mode: auditlog.ModeLog})

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.0.0.9:443"
	req.Header.Set("X-Forwarded-For", "6.6.6.6")
	req.Header.Set("X-Real-IP", "7.7.7.7")
	logger.Record(req, finished(true, 200))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "10.0.0.9", logs.All()[0].ContextMap()["ip"])
}

func TestLogger_Record_FailureIsWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Mode: auditlog.ModeLog})

	logger.Record(nil, finished(false, 409))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, int64(409), e.ContextMap()["status"])
	assert.Equal(t, "dev detail", e.ContextMap()["message_dev"])
}

func TestLogger_Record_StoreWriteHasDeadline(t *testing.T) {
	timeouts.Configure(timeouts.Config{Write: 20 * time.Millisecond})
	t.Cleanup(timeouts.Reset)

	store := &stallingStore{}
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(store, zap.New(core), auditlog.Config{Mode: auditlog.ModeDB})

	reqCtx, cancelReq := context.WithCancel(context.Background())
	cancelReq()
	req := httptest.NewRequest("POST", "/crud", nil).WithContext(reqCtx)

	done := make(chan struct{})
	go func() {
		logger.Record(req, finished(true, 201))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked on a stalled store")
	}

	assert.True(t, store.hadDeadline, "store write must run under a deadline")
	assert.ErrorIs(t, store.err, context.DeadlineExceeded, "request cancellation must not abort the write")
	assert.Equal(t, 1, logs.FilterMessage("failed to store audit event").Len())
	assert.Equal(t, 1, logs.FilterMessage("operation timed out").Len())
}

func TestLogger_Record_Modes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		mode     string
		wantLogs int
		wantDB   int
	}{
		{mode: auditlog.ModeAll, wantLogs: 1, wantDB: 1},
		{mode: auditlog.ModeDB, wantLogs: 0, wantDB: 1},
		{mode: auditlog.ModeLog, wantLogs: 1, wantDB: 0},
		{mode: auditlog.ModeOff, wantLogs: 0, wantDB: 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			store := audit.New(db, "bitacora_"+tt.mode)
			core, logs := observer.New(zap.DebugLevel)
			logger := auditlog.New(store, zap.New(core), auditlog.Config{Mode: tt.mode})

			req := httptest.NewRequest("POST", "/crud", nil)
			req.Header.Set("User-Agent", "secgruposet-test/1.0")
			logger.Record(req, finished(true, 201))

			assert.Equal(t, tt.wantLogs, logs.Len())
			events, err := store.Query(ctx, audit.QueryFilter{})
			require.NoError(t, err)
			require.Len(t, events, tt.wantDB)
			if tt.wantDB == 1 {
				e := events[0]
				assert.Equal(t, "GetAll", e.ProcessType)
				assert.Equal(t, 201, e.Status)
				assert.Equal(t, 2, e.Count)
				assert.Equal(t, "secgruposet-test/1.0", e.UserAgent)
			}
		})
	}
}
