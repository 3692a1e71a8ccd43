// internal/app/store/gruposets/gruposetstore.go
package gruposetstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinnalovers/secgruposet/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// DefaultCollection is the collection GRUPOSET records live in.
const DefaultCollection = "ztgruposet"

// Store is the MongoDB adapter. Composite-key uniqueness is enforced by the
// unique index ensured in indexes.EnsureAll.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{c: db.Collection(collection)}
}

// Read returns every record matching f. The result is never nil.
func (s *Store) Read(ctx context.Context, f models.Filter) ([]models.GrupoSet, error) {
	cur, err := s.c.Find(ctx, filterDoc(f))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.GrupoSet{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a record with key k is stored.
func (s *Store) Exists(ctx context.Context, k models.Key) (bool, error) {
	n, err := s.c.CountDocuments(ctx, keyDoc(k), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts docs in order. A duplicate composite key yields
// models.ErrDuplicateKey; documents before the duplicate stay inserted.
func (s *Store) Create(ctx context.Context, docs []models.GrupoSet) ([]models.GrupoSet, error) {
	if len(docs) == 0 {
		return []models.GrupoSet{}, nil
	}
	batch := make([]any, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	if _, err := s.c.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true)); err != nil {
		if isDup(err) {
			return nil, fmt.Errorf("%w: %v", models.ErrDuplicateKey, err)
		}
		return nil, err
	}
	return docs, nil
}

// Update applies c to the record with key k and returns the updated record.
func (s *Store) Update(ctx context.Context, k models.Key, c models.Changes) (models.GrupoSet, error) {
	set := c.SetFields()
	if len(set) == 0 {
		return s.findOne(ctx, k)
	}

	var g models.GrupoSet
	err := s.c.FindOneAndUpdate(ctx, keyDoc(k), bson.M{"$set": bson.M(set)},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	return g, classify(err)
}

// SoftDelete changes the ACTIVO/BORRADO flags of the record with key k
// according to p and stamps the modifier fields, atomically.
func (s *Store) SoftDelete(ctx context.Context, k models.Key, p models.SoftDeletePolicy, stamp models.ModStamp) (models.GrupoSet, error) {
	var update any
	if p == models.SoftDeleteToggle {
		update = togglePipeline(stamp)
	} else {
		update = bson.M{"$set": bson.M{
			models.FieldActivo:     false,
			models.FieldBorrado:    true,
			models.FieldFechaMod:   stamp.Fecha,
			models.FieldHoraMod:    stamp.Hora,
			models.FieldUsuarioMod: stamp.Usuario,
		}}
	}

	var g models.GrupoSet
	err := s.c.FindOneAndUpdate(ctx, keyDoc(k), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	return g, classify(err)
}

// HardDelete removes the record with key k and returns what was removed.
func (s *Store) HardDelete(ctx context.Context, k models.Key) (models.GrupoSet, error) {
	var g models.GrupoSet
	err := s.c.FindOneAndDelete(ctx, keyDoc(k)).Decode(&g)
	if err == nil {
		zap.L().Info("gruposet hard-deleted",
			zap.String("collection", s.c.Name()),
			zap.String("id", k.ID))
	}
	return g, classify(err)
}

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.c.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *Store) findOne(ctx context.Context, k models.Key) (models.GrupoSet, error) {
	var g models.GrupoSet
	err := s.c.FindOne(ctx, keyDoc(k)).Decode(&g)
	return g, classify(err)
}

// togglePipeline flips ACTIVO, then derives BORRADO from the new value.
// Stamps are wrapped in $literal so values starting with "$" stay strings.
func togglePipeline(stamp models.ModStamp) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: models.FieldActivo, Value: bson.D{{Key: "$not", Value: bson.A{"$" + models.FieldActivo}}}},
			{Key: models.FieldFechaMod, Value: bson.D{{Key: "$literal", Value: stamp.Fecha}}},
			{Key: models.FieldHoraMod, Value: bson.D{{Key: "$literal", Value: stamp.Hora}}},
			{Key: models.FieldUsuarioMod, Value: bson.D{{Key: "$literal", Value: stamp.Usuario}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: models.FieldBorrado, Value: bson.D{{Key: "$not", Value: bson.A{"$" + models.FieldActivo}}}},
		}}},
	}
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case isDup(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicateKey, err)
	}
	return err
}

func isDup(err error) bool {
	return wafflemongo.IsDup(err) || mongo.IsDuplicateKeyError(err)
}

func keyDoc(k models.Key) bson.D {
	return bson.D{
		{Key: models.FieldSociedad, Value: k.SociedadID},
		{Key: models.FieldCedi, Value: k.CediID},
		{Key: models.FieldEtiqueta, Value: k.EtiquetaID},
		{Key: models.FieldValor, Value: k.ValorID},
		{Key: models.FieldGrupoEt, Value: k.GrupoEtID},
		{Key: models.FieldID, Value: k.ID},
	}
}

func filterDoc(f models.Filter) bson.D {
	d := bson.D{}
	if f.SociedadID != nil {
		d = append(d, bson.E{Key: models.FieldSociedad, Value: *f.SociedadID})
	}
	if f.CediID != nil {
		d = append(d, bson.E{Key: models.FieldCedi, Value: *f.CediID})
	}
	if f.EtiquetaID != nil {
		d = append(d, bson.E{Key: models.FieldEtiqueta, Value: *f.EtiquetaID})
	}
	if f.ValorID != nil {
		d = append(d, bson.E{Key: models.FieldValor, Value: *f.ValorID})
	}
	if f.GrupoEtID != nil {
		d = append(d, bson.E{Key: models.FieldGrupoEt, Value: *f.GrupoEtID})
	}
	if f.ID != nil {
		d = append(d, bson.E{Key: models.FieldID, Value: *f.ID})
	}
	if f.Activo != nil {
		d = append(d, bson.E{Key: models.FieldActivo, Value: *f.Activo})
	}
	if f.Borrado != nil {
		d = append(d, bson.E{Key: models.FieldBorrado, Value: *f.Borrado})
	}
	return d
}
