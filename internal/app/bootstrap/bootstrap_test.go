package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bitacorasfeature "github.com/cinnalovers/secgruposet/internal/app/features/bitacoras"
	"github.com/cinnalovers/secgruposet/internal/app/features/gruposetcrud"
	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	"github.com/cinnalovers/secgruposet/internal/app/system/ratelimit"
	"github.com/cinnalovers/secgruposet/internal/app/system/bitacora"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/cinnalovers/secgruposet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "db_security",
		MongoCollection: "ztgruposet",
		SoftDeleteMongo: models.SoftDeleteSet,
		SoftDeleteAzure: models.SoftDeleteToggle,
		MaxBodyBytes:    defaultMaxBodyBytes,
		AuditLog:        "off",
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "invalid MongoDB URI"},
		{name: "bad mongo policy", mutate: func(c *AppConfig) { c.SoftDeleteMongo = "flip" }, wantErr: "softdelete_mongodb"},
		{name: "bad azure policy", mutate: func(c *AppConfig) { c.SoftDeleteAzure = "" }, wantErr: "softdelete_azure"},
		{name: "endpoint without key", mutate: func(c *AppConfig) { c.CosmosEndpoint = "https://acct.documents.azure.com:443/" }, wantErr: "together"},
		{name: "bad audit mode", mutate: func(c *AppConfig) { c.AuditLog = "verbose" }, wantErr: "audit_log"},
		{name: "negative rate limit", mutate: func(c *AppConfig) { c.RateLimit = -1 }, wantErr: "rate_limit_per_minute"},
		{name: "key without endpoint", mutate: func(c *AppConfig) { c.CosmosKey = "secret" }, wantErr: "together"},
		{name: "cosmos without container", mutate: func(c *AppConfig) {
			c.CosmosConnectionString = "AccountEndpoint=https://acct.documents.azure.com:443/;AccountKey=a2V5;"
			c.CosmosDatabase = "db_security"
		}, wantErr: "cosmos_container"},
		{name: "cosmos complete", mutate: func(c *AppConfig) {
			c.CosmosEndpoint = "https://acct.documents.azure.com:443/"
			c.CosmosKey = "secret"
			c.CosmosDatabase = "db_security"
			c.CosmosContainer = "ztgruposet"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(nil, cfg, zap.NewNop())
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCosmosEnabled(t *testing.T) {
	assert.False(t, AppConfig{}.CosmosEnabled())
	assert.False(t, AppConfig{CosmosEndpoint: "https://x"}.CosmosEnabled())
	assert.True(t, AppConfig{CosmosEndpoint: "https://x", CosmosKey: "k"}.CosmosEnabled())
	assert.True(t, AppConfig{CosmosConnectionString: "AccountEndpoint=x;"}.CosmosEnabled())
}

func TestAuditToDB(t *testing.T) {
	assert.True(t, AppConfig{AuditLog: "all"}.AuditToDB())
	assert.True(t, AppConfig{AuditLog: "db"}.AuditToDB())
	assert.False(t, AppConfig{AuditLog: "log"}.AuditToDB())
	assert.False(t, AppConfig{AuditLog: "off"}.AuditToDB())
	assert.False(t, AppConfig{}.AuditToDB())
}

func TestPolicyOrRaw(t *testing.T) {
	assert.Equal(t, models.SoftDeleteToggle, policyOrRaw(" Toggle "))
	assert.Equal(t, models.SoftDeletePolicy("flip"), policyOrRaw("flip"))
}

type routerFixture struct {
	h     http.Handler
	mongo *testutil.MemStore
	azure *testutil.MemStore
}

func newRouterFixture(t *testing.T, cfg AppConfig) *routerFixture {
	return newRouterFixtureWith(t, cfg, nil)
}

func newRouterFixtureWith(t *testing.T, cfg AppConfig, bitacoras bitacorasfeature.Querier) *routerFixture {
	t.Helper()
	f := &routerFixture{mongo: &testutil.MemStore{}, azure: &testutil.MemStore{}}
	rd := routerDeps{
		backends: gruposetcrud.Registry{
			gruposetcrud.BackendMongo: {Backend: f.mongo, SoftDelete: cfg.SoftDeleteMongo, BodyAsChanges: true},
			gruposetcrud.BackendAzure: {Backend: f.azure, SoftDelete: cfg.SoftDeleteAzure},
		},
		records:   f.mongo,
		bitacoras: bitacoras,
	}
	if cfg.RateLimit > 0 {
		rd.limiter = ratelimit.New(cfg.RateLimit, time.Minute)
		t.Cleanup(rd.limiter.Close)
	}
	f.h = newRouter(cfg, rd, zap.NewNop())
	return f
}

type stubBitacoras struct {
	events []audit.Event
}

func (s stubBitacoras) Query(context.Context, audit.QueryFilter) ([]audit.Event, error) {
	return s.events, nil
}

func (f *routerFixture) serve(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, testutil.NewJSONRequest(t, method, target, body))
	return rec
}

func TestRouter_Root(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	rec := f.serve(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Service  string   `json:"service"`
		Backends []string `json:"backends"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "secgruposet", body.Service)
	assert.Equal(t, []string{"azure", "mongodb"}, body.Backends)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	rec := f.serve(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mongodb":"connected"`)
}

func TestRouter_CrudEndpoint(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	rec := f.serve(t, http.MethodPost,
		"/api/security/gruposet/crud?ProcessType=Create&LoggedUser=alice&DBServer=azure",
		map[string]any{"data": map[string]any{
			"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1", "ID": "A",
		}})

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp bitacora.Response
	testutil.DecodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Len(t, f.azure.Snapshot(), 1)
	assert.Empty(t, f.mongo.Snapshot())
}

func TestRouter_RecordController(t *testing.T) {
	f := newRouterFixture(t, validConfig())
	f.mongo.Docs = []models.GrupoSet{testutil.GrupoSet("A")}

	rec := f.serve(t, http.MethodGet, "/api/security/gruposet/getall", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.GrupoSet
	testutil.DecodeJSON(t, rec, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "A", docs[0].ID)
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	rec := f.serve(t, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no route for GET /nope")
}

func TestRouter_CORS(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/security/gruposet/getall", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_BodyLimit(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBodyBytes = 64
	f := newRouterFixture(t, cfg)

	big := map[string]any{"data": map[string]any{"IDETIQUETA": strings.Repeat("x", 256)}}
	rec := f.serve(t, http.MethodPost,
		"/api/security/gruposet/crud?ProcessType=Create&DBServer=mongodb", big)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.mongo.Snapshot())
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = 1
	f := newRouterFixture(t, cfg)

	first := f.serve(t, http.MethodGet, "/api/security/gruposet/getall", nil)
	second := f.serve(t, http.MethodGet, "/api/security/gruposet/getall", nil)
	health := f.serve(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, health.Code, "health is not limited")
}

func TestRouter_BitacoraDisabled(t *testing.T) {
	f := newRouterFixture(t, validConfig())

	rec := f.serve(t, http.MethodGet, "/api/security/gruposet/bitacora", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "audit_log")
}

func TestRouter_BitacoraList(t *testing.T) {
	f := newRouterFixtureWith(t, validConfig(), stubBitacoras{events: []audit.Event{
		{BitacoraID: "b1", ProcessType: "GetAll", DBServer: "mongodb", Success: true, Status: 200},
	}})

	rec := f.serve(t, http.MethodGet, "/api/security/gruposet/bitacora?processType=GetAll", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var events []audit.Event
	testutil.DecodeJSON(t, rec, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "b1", events[0].BitacoraID)
}

func TestShutdown_StopsLimiter(t *testing.T) {
	l := ratelimit.New(10, time.Minute)

	err := Shutdown(context.Background(), nil, validConfig(), DBDeps{Limiter: l}, zap.NewNop())

	require.NoError(t, err)
	select {
	case <-l.Done():
	default:
		t.Fatal("limiter sweeper still running after Shutdown")
	}
}
