package gruposets

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/cinnalovers/secgruposet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ Store = (*testutil.MemStore)(nil)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestHandler(store *testutil.MemStore) http.Handler {
	h := NewHandler(store, models.SoftDeleteSet, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	h.Now = func() time.Time { return fixedNow }
	h.NewID = func() string { return "generated-id" }
	return Routes(h)
}

func seed(id string) models.GrupoSet {
	return models.GrupoSet{
		SociedadID: 1, CediID: 2, EtiquetaID: "E1", ValorID: "V1", GrupoEtID: "G1", ID: id,
		Activo: true, FechaReg: "2026-01-01", HoraReg: "08:00:00", UsuarioReg: "SYSTEM",
	}
}

func keyQuery(id string) url.Values {
	q := url.Values{}
	q.Set("IDSOCIEDAD", "1")
	q.Set("IDCEDI", "2")
	q.Set("IDETIQUETA", "E1")
	q.Set("IDVALOR", "V1")
	q.Set("IDGRUPOET", "G1")
	q.Set("ID", id)
	return q
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.NewJSONRequest(t, method, target, body))
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var body errorsfeature.Body
	testutil.DecodeJSON(t, rec, &body)
	return body.Error
}

func TestGetAll_FiltersByQuery(t *testing.T) {
	other := seed("B")
	other.CediID = 9
	store := &testutil.MemStore{Docs: []models.GrupoSet{seed("A"), other}}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodGet, "/getall?IDCEDI=9", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.GrupoSet
	testutil.DecodeJSON(t, rec, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "B", docs[0].ID)
}

func TestGetAll_EmptyIsArray(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodGet, "/getall", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetAll_BadFilterIsInlineError(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodGet, "/getall?IDSOCIEDAD=abc", nil)

	assert.NotEmpty(t, errorOf(t, rec))
}

func TestGetByID_Found(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{Docs: []models.GrupoSet{seed("A"), seed("B")}})

	rec := do(t, h, http.MethodGet, "/getbyid?"+keyQuery("B").Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var g models.GrupoSet
	testutil.DecodeJSON(t, rec, &g)
	assert.Equal(t, "B", g.ID)
}

func TestGetByID_NoMatchIsNull(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodGet, "/getbyid?"+keyQuery("nope").Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `null`, rec.Body.String())
}

func TestGetByID_MissingKeyField(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})
	q := keyQuery("A")
	q.Del("IDVALOR")

	rec := do(t, h, http.MethodGet, "/getbyid?"+q.Encode(), nil)

	assert.Equal(t, "Missing key parameter: IDVALOR", errorOf(t, rec))
}

func TestAddOne_SingleUnderData(t *testing.T) {
	store := &testutil.MemStore{}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/addone?LoggedUser=alice", map[string]any{
		"data": map[string]any{
			"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.GrupoSet
	testutil.DecodeJSON(t, rec, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "generated-id", docs[0].ID)
	assert.Equal(t, "alice", docs[0].UsuarioReg)
	assert.Equal(t, "2026-03-04", docs[0].FechaReg)
	assert.Equal(t, "05:06:07", docs[0].HoraReg)
	assert.True(t, docs[0].Activo)
	assert.Len(t, store.Snapshot(), 1)
}

func TestAddOne_ManyAsRawArray(t *testing.T) {
	store := &testutil.MemStore{}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/addone", []any{
		map[string]any{"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1", "ID": "A"},
		map[string]any{"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1", "ID": "B"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.GrupoSet
	testutil.DecodeJSON(t, rec, &docs)
	require.Len(t, docs, 2)
	assert.Equal(t, "SYSTEM", docs[0].UsuarioReg)
	assert.Len(t, store.Snapshot(), 2)
}

func TestAddOne_UnderGruposet(t *testing.T) {
	store := &testutil.MemStore{}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/addone", map[string]any{
		"gruposet": map[string]any{"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1", "ID": "A"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.Snapshot(), 1)
}

func TestAddOne_Duplicate(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{Docs: []models.GrupoSet{seed("A")}})

	rec := do(t, h, http.MethodPost, "/addone", map[string]any{
		"IDSOCIEDAD": 1, "IDCEDI": 2, "IDETIQUETA": "E1", "IDVALOR": "V1", "IDGRUPOET": "G1", "ID": "A",
	})

	assert.Equal(t, "A record with this key already exists", errorOf(t, rec))
}

func TestAddOne_MissingKeyField(t *testing.T) {
	store := &testutil.MemStore{}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/addone", map[string]any{"IDSOCIEDAD": 1})

	assert.Contains(t, errorOf(t, rec), "Missing key parameter")
	assert.Zero(t, store.Calls)
}

func TestAddOne_EmptyBody(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodPost, "/addone", nil)

	assert.Equal(t, "Missing body.data", errorOf(t, rec))
}

func TestUpdateOne_WholeBodyIsChanges(t *testing.T) {
	store := &testutil.MemStore{Docs: []models.GrupoSet{seed("A")}}
	h := newTestHandler(store)

	q := keyQuery("A")
	q.Set("LoggedUser", "bob")
	rec := do(t, h, http.MethodPost, "/updateone?"+q.Encode(), map[string]any{"IDVALOR": "V2"})

	require.Equal(t, http.StatusOK, rec.Code)
	var g models.GrupoSet
	testutil.DecodeJSON(t, rec, &g)
	assert.Equal(t, "V2", g.ValorID)
	assert.Equal(t, "bob", g.UsuarioMod)
	assert.Equal(t, "2026-03-04", g.FechaUltMod)
	assert.Equal(t, "05:06:07", g.HoraUltMod)
}

func TestUpdateOne_DataObject(t *testing.T) {
	store := &testutil.MemStore{Docs: []models.GrupoSet{seed("A")}}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/updateone?"+keyQuery("A").Encode(), map[string]any{
		"data": map[string]any{"ACTIVO": false},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var g models.GrupoSet
	testutil.DecodeJSON(t, rec, &g)
	assert.False(t, g.Activo)
	assert.Equal(t, "SYSTEM", g.UsuarioMod)
}

func TestUpdateOne_NotFound(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodPost, "/updateone?"+keyQuery("A").Encode(), map[string]any{"IDVALOR": "V2"})

	assert.Equal(t, "No record found to update", errorOf(t, rec))
}

func TestUpdateOne_UnknownField(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{Docs: []models.GrupoSet{seed("A")}})

	rec := do(t, h, http.MethodPost, "/updateone?"+keyQuery("A").Encode(), map[string]any{"COLOR": "red"})

	assert.Equal(t, "Unrecognized fields: COLOR", errorOf(t, rec))
}

func TestUpdateOne_EmptyBody(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{Docs: []models.GrupoSet{seed("A")}})

	rec := do(t, h, http.MethodPost, "/updateone?"+keyQuery("A").Encode(), nil)

	assert.Equal(t, "The request body is empty", errorOf(t, rec))
}

func TestDeleteOne_SetsFlags(t *testing.T) {
	store := &testutil.MemStore{Docs: []models.GrupoSet{seed("A")}}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/deleteone?"+keyQuery("A").Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var g models.GrupoSet
	testutil.DecodeJSON(t, rec, &g)
	assert.False(t, g.Activo)
	assert.True(t, g.Borrado)

	// set policy is idempotent
	rec = do(t, h, http.MethodPost, "/deleteone?"+keyQuery("A").Encode(), nil)
	testutil.DecodeJSON(t, rec, &g)
	assert.False(t, g.Activo)
	assert.True(t, g.Borrado)
}

func TestDeleteOne_NotFound(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodPost, "/deleteone?"+keyQuery("A").Encode(), nil)

	assert.Equal(t, "No record found to mark as deleted", errorOf(t, rec))
}

func TestDeleteHard(t *testing.T) {
	store := &testutil.MemStore{Docs: []models.GrupoSet{seed("A"), seed("B")}}
	h := newTestHandler(store)

	rec := do(t, h, http.MethodPost, "/deletehard?"+keyQuery("A").Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"deleted"}`, rec.Body.String())
	left := store.Snapshot()
	require.Len(t, left, 1)
	assert.Equal(t, "B", left[0].ID)
}

func TestDeleteHard_NotFound(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodPost, "/deletehard?"+keyQuery("A").Encode(), nil)

	assert.Equal(t, "No record found to delete", errorOf(t, rec))
}

func TestStoreFailureIsInline(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{Err: errors.New("connection reset")})

	rec := do(t, h, http.MethodGet, "/getall", nil)

	assert.Equal(t, "The process did not complete", errorOf(t, rec))
}

func TestRoutes_MethodMismatch(t *testing.T) {
	h := newTestHandler(&testutil.MemStore{})

	rec := do(t, h, http.MethodGet, "/addone", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
