package audit_test

import (
	"testing"
	"time"

	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	"github.com/cinnalovers/secgruposet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db, "")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		BitacoraID:  "b-1",
		ProcessType: "Create",
		DBServer:    "mongodb",
		LoggedUser:  "alice",
		IP:          "192.168.1.1",
		Success:     true,
		Status:      201,
		Count:       2,
	}
	require.NoError(t, store.Log(ctx, event))

	events, err := store.Query(ctx, audit.QueryFilter{LoggedUser: "alice"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	got := events[0]
	assert.False(t, got.ID.IsZero(), "ID is generated")
	assert.False(t, got.Timestamp.IsZero(), "Timestamp is set")
	assert.Equal(t, "b-1", got.BitacoraID)
	assert.Equal(t, 201, got.Status)
	assert.Equal(t, 2, got.Count)
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db, "bitacora_test")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []audit.Event{
		{BitacoraID: "1", ProcessType: "GetAll", DBServer: "mongodb", LoggedUser: "alice", Success: true, Timestamp: base},
		{BitacoraID: "2", ProcessType: "Create", DBServer: "azure", LoggedUser: "alice", Success: false, Timestamp: base.Add(time.Minute)},
		{BitacoraID: "3", ProcessType: "Create", DBServer: "mongodb", LoggedUser: "bob", Success: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		require.NoError(t, store.Log(ctx, e))
	}

	failed := false
	start := base.Add(30 * time.Second)
	end := base.Add(90 * time.Second)
	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   []string
	}{
		{name: "all newest first", filter: audit.QueryFilter{}, want: []string{"3", "2", "1"}},
		{name: "process type", filter: audit.QueryFilter{ProcessType: "Create"}, want: []string{"3", "2"}},
		{name: "db server", filter: audit.QueryFilter{DBServer: "azure"}, want: []string{"2"}},
		{name: "user", filter: audit.QueryFilter{LoggedUser: "bob"}, want: []string{"3"}},
		{name: "failures", filter: audit.QueryFilter{Success: &failed}, want: []string{"2"}},
		{name: "since", filter: audit.QueryFilter{StartTime: &start}, want: []string{"3", "2"}},
		{name: "window", filter: audit.QueryFilter{StartTime: &start, EndTime: &end}, want: []string{"2"}},
		{name: "limit", filter: audit.QueryFilter{Limit: 1}, want: []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.BitacoraID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db, "")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, store.EnsureIndexes(ctx))
	require.NoError(t, store.EnsureIndexes(ctx), "EnsureIndexes is idempotent")
}
