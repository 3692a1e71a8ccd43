// internal/app/features/gruposetcrud/backend.go
package gruposetcrud

import (
	"context"
	"sort"
	"strings"

	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// DBServer names accepted by the dispatcher.
const (
	BackendMongo = "mongodb"
	BackendAzure = "azure"
)

// Backend is the capability set every store adapter provides. Adapters
// report outcomes with models.ErrNotFound, models.ErrDuplicateKey and
// models.ErrConcurrentUpdate.
type Backend interface {
	Read(ctx context.Context, f models.Filter) ([]models.GrupoSet, error)
	Exists(ctx context.Context, k models.Key) (bool, error)
	Create(ctx context.Context, docs []models.GrupoSet) ([]models.GrupoSet, error)
	Update(ctx context.Context, k models.Key, c models.Changes) (models.GrupoSet, error)
	SoftDelete(ctx context.Context, k models.Key, p models.SoftDeletePolicy, stamp models.ModStamp) (models.GrupoSet, error)
	HardDelete(ctx context.Context, k models.Key) (models.GrupoSet, error)
	Ping(ctx context.Context) error
}

// Target is a registered backend with its per-backend behavior.
type Target struct {
	Backend Backend
	// SoftDelete selects the logical-delete semantics.
	SoftDelete models.SoftDeletePolicy
	// BodyAsChanges makes an update without body.data use the whole body
	// as the changeset. When false, a missing data means no changes.
	BodyAsChanges bool
}

// Registry maps lower-case DBServer names to targets. It is built once at
// startup and only read afterwards.
type Registry map[string]Target

// Lookup resolves a DBServer value.
func (r Registry) Lookup(dbServer string) (Target, error) {
	name := strings.ToLower(strings.TrimSpace(dbServer))
	if name == "" {
		return Target{}, apperr.Validation(
			"Missing DBServer parameter",
			"DBServer is required (one of: "+strings.Join(r.Names(), ", ")+")",
		)
	}
	t, ok := r[name]
	if !ok || t.Backend == nil {
		return Target{}, apperr.UnsupportedBackend(name)
	}
	return t, nil
}

// Names returns the registered DBServer names, sorted.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
