package testutil

import (
	"context"
	"testing"

	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the collection name used by store and handler tests.
const Collection = "ztgruposet"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// GrupoSet returns an active record with the given ID and a fixed key prefix.
func GrupoSet(id string) models.GrupoSet {
	return models.GrupoSet{
		SociedadID: 1,
		CediID:     2,
		EtiquetaID: "E1",
		ValorID:    "V1",
		GrupoEtID:  "G1",
		ID:         id,
		Activo:     true,
		Borrado:    false,
		FechaReg:   "2026-01-01",
		HoraReg:    "08:00:00",
		UsuarioReg: "fixture",
	}
}

// CreateGrupoSet inserts g directly into the test collection.
func (f *Fixtures) CreateGrupoSet(ctx context.Context, g models.GrupoSet) models.GrupoSet {
	f.t.Helper()

	if _, err := f.db.Collection(Collection).InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test gruposet: %v", err)
	}
	return g
}

// FindGrupoSet loads the record with key k, failing the test if absent.
func (f *Fixtures) FindGrupoSet(ctx context.Context, k models.Key) models.GrupoSet {
	f.t.Helper()

	var g models.GrupoSet
	filter := map[string]any{
		models.FieldSociedad: k.SociedadID,
		models.FieldCedi:     k.CediID,
		models.FieldEtiqueta: k.EtiquetaID,
		models.FieldValor:    k.ValorID,
		models.FieldGrupoEt:  k.GrupoEtID,
		models.FieldID:       k.ID,
	}
	if err := f.db.Collection(Collection).FindOne(ctx, filter).Decode(&g); err != nil {
		f.t.Fatalf("failed to load gruposet %+v: %v", k, err)
	}
	return g
}
