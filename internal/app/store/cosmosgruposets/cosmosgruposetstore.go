// internal/app/store/cosmosgruposets/cosmosgruposetstore.go
package cosmosgruposetstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent inserts during a batch create.
const DefaultParallelism = 8

// Config locates the Cosmos container. Either ConnectionString or
// Endpoint+Key must be set.
type Config struct {
	Endpoint         string
	Key              string
	ConnectionString string
	Database         string
	Container        string
}

// Connect builds a container client from cfg. No request is made.
func Connect(cfg Config) (*azcosmos.ContainerClient, error) {
	var (
		client *azcosmos.Client
		err    error
	)
	switch {
	case cfg.ConnectionString != "":
		client, err = azcosmos.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.Endpoint != "" && cfg.Key != "":
		var cred azcosmos.KeyCredential
		cred, err = azcosmos.NewKeyCredential(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("cosmos key: %w", err)
		}
		client, err = azcosmos.NewClientWithKey(cfg.Endpoint, cred, nil)
	default:
		return nil, errors.New("cosmos: connection string or endpoint and key required")
	}
	if err != nil {
		return nil, fmt.Errorf("cosmos client: %w", err)
	}
	return client.NewContainer(cfg.Database, cfg.Container)
}

// Store is the Cosmos DB adapter. Items live in the IDSOCIEDAD partition
// under an id derived from the full composite key, so the six key fields
// are unique together (as on MongoDB) and single-record operations are
// point reads.
type Store struct {
	c           container
	parallelism int
}

func New(cc *azcosmos.ContainerClient, parallelism int) *Store {
	return newStore(sdkContainer{c: cc}, parallelism)
}

func newStore(c container, parallelism int) *Store {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Store{c: c, parallelism: parallelism}
}

// item is the stored shape: the record plus the Cosmos id.
type item struct {
	models.GrupoSet
	ItemID string `json:"id"`
}

// maxItemIDLen is the Cosmos limit on item ids.
const maxItemIDLen = 255

// itemID renders k as a Cosmos item id. String parts are query-escaped so
// the "|" separator and the characters Cosmos forbids in ids ("/", "\",
// "?", "#") cannot appear unescaped. Ids over the Cosmos limit are hashed.
func itemID(k models.Key) string {
	id := strings.Join([]string{
		strconv.Itoa(k.SociedadID),
		strconv.Itoa(k.CediID),
		url.QueryEscape(k.EtiquetaID),
		url.QueryEscape(k.ValorID),
		url.QueryEscape(k.GrupoEtID),
		url.QueryEscape(k.ID),
	}, "|")
	if len(id) > maxItemIDLen {
		sum := sha256.Sum256([]byte(id))
		return "sha256-" + hex.EncodeToString(sum[:])
	}
	return id
}

func encode(g models.GrupoSet) ([]byte, error) {
	return json.Marshal(item{GrupoSet: g, ItemID: itemID(g.Key())})
}

func decode(b []byte) (models.GrupoSet, error) {
	var it item
	if err := json.Unmarshal(b, &it); err != nil {
		return models.GrupoSet{}, fmt.Errorf("decode cosmos item: %w", err)
	}
	return it.GrupoSet, nil
}

// Read returns every item matching f. The query stays in one partition when
// f carries an IDSOCIEDAD.
func (s *Store) Read(ctx context.Context, f models.Filter) ([]models.GrupoSet, error) {
	sql, params := buildQuery(f)
	raw, err := s.c.query(ctx, sql, params, f.SociedadID)
	if err != nil {
		return nil, err
	}
	out := make([]models.GrupoSet, 0, len(raw))
	for _, b := range raw {
		g, err := decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Exists reports whether a record with key k is stored.
func (s *Store) Exists(ctx context.Context, k models.Key) (bool, error) {
	_, _, err := s.load(ctx, k)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	}
	return false, err
}

// Create inserts docs concurrently. There is no rollback: on failure the
// documents already written stay written.
func (s *Store) Create(ctx context.Context, docs []models.GrupoSet) ([]models.GrupoSet, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, d := range docs {
		g.Go(func() error {
			exists, err := s.Exists(gctx, d.Key())
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: ID %s", models.ErrDuplicateKey, d.ID)
			}
			b, err := encode(d)
			if err != nil {
				return err
			}
			return s.c.create(gctx, d.SociedadID, itemID(d.Key()), b)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update merges c into the item with key k. A changed key field moves the
// item: the new one is created (possibly in another partition) and the old
// one removed.
func (s *Store) Update(ctx context.Context, k models.Key, c models.Changes) (models.GrupoSet, error) {
	cur, etag, err := s.load(ctx, k)
	if err != nil {
		return models.GrupoSet{}, err
	}
	next := c.Apply(cur)
	b, err := encode(next)
	if err != nil {
		return models.GrupoSet{}, err
	}

	oldID := itemID(k)
	if next.Key() == k {
		if err := s.c.replace(ctx, k.SociedadID, oldID, b, etag); err != nil {
			return models.GrupoSet{}, err
		}
		return next, nil
	}

	newID := itemID(next.Key())
	if err := s.c.create(ctx, next.SociedadID, newID, b); err != nil {
		return models.GrupoSet{}, err
	}
	if err := s.c.delete(ctx, k.SociedadID, oldID, etag); err != nil {
		zap.L().Warn("cosmos key change left old item in place",
			zap.String("old_id", oldID),
			zap.String("new_id", newID),
			zap.Error(err))
		return models.GrupoSet{}, err
	}
	return next, nil
}

// SoftDelete applies p and stamp to the item with key k.
func (s *Store) SoftDelete(ctx context.Context, k models.Key, p models.SoftDeletePolicy, stamp models.ModStamp) (models.GrupoSet, error) {
	cur, etag, err := s.load(ctx, k)
	if err != nil {
		return models.GrupoSet{}, err
	}
	next := p.SoftDelete(cur, stamp)
	b, err := encode(next)
	if err != nil {
		return models.GrupoSet{}, err
	}
	if err := s.c.replace(ctx, k.SociedadID, itemID(k), b, etag); err != nil {
		return models.GrupoSet{}, err
	}
	return next, nil
}

// HardDelete removes the item with key k and returns it.
func (s *Store) HardDelete(ctx context.Context, k models.Key) (models.GrupoSet, error) {
	cur, etag, err := s.load(ctx, k)
	if err != nil {
		return models.GrupoSet{}, err
	}
	if err := s.c.delete(ctx, k.SociedadID, itemID(k), etag); err != nil {
		return models.GrupoSet{}, err
	}
	zap.L().Info("gruposet hard-deleted", zap.String("backend", "azure"), zap.String("id", k.ID))
	return cur, nil
}

// Ping reads the container properties.
func (s *Store) Ping(ctx context.Context) error {
	return s.c.ping(ctx)
}

// load point-reads the item for k and checks every key field; an item whose
// stored key differs (a hashed id collision) is reported as not found.
func (s *Store) load(ctx context.Context, k models.Key) (models.GrupoSet, azcore.ETag, error) {
	b, etag, err := s.c.read(ctx, k.SociedadID, itemID(k))
	if err != nil {
		return models.GrupoSet{}, "", err
	}
	g, err := decode(b)
	if err != nil {
		return models.GrupoSet{}, "", err
	}
	if g.Key() != k {
		return models.GrupoSet{}, "", models.ErrNotFound
	}
	return g, etag, nil
}

func buildQuery(f models.Filter) (string, []azcosmos.QueryParameter) {
	var (
		conds  []string
		params []azcosmos.QueryParameter
	)
	add := func(field string, v any) {
		conds = append(conds, "c."+field+" = @"+field)
		params = append(params, azcosmos.QueryParameter{Name: "@" + field, Value: v})
	}
	if f.SociedadID != nil {
		add(models.FieldSociedad, *f.SociedadID)
	}
	if f.CediID != nil {
		add(models.FieldCedi, *f.CediID)
	}
	if f.EtiquetaID != nil {
		add(models.FieldEtiqueta, *f.EtiquetaID)
	}
	if f.ValorID != nil {
		add(models.FieldValor, *f.ValorID)
	}
	if f.GrupoEtID != nil {
		add(models.FieldGrupoEt, *f.GrupoEtID)
	}
	if f.ID != nil {
		add(models.FieldID, *f.ID)
	}
	if f.Activo != nil {
		add(models.FieldActivo, *f.Activo)
	}
	if f.Borrado != nil {
		add(models.FieldBorrado, *f.Borrado)
	}

	sql := "SELECT * FROM c"
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	return sql, params
}
