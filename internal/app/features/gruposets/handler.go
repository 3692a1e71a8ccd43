// internal/app/features/gruposets/handler.go
package gruposets

import (
	"context"
	"time"

	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the subset of the Mongo adapter the controller uses.
type Store interface {
	Read(ctx context.Context, f models.Filter) ([]models.GrupoSet, error)
	Create(ctx context.Context, docs []models.GrupoSet) ([]models.GrupoSet, error)
	Update(ctx context.Context, k models.Key, c models.Changes) (models.GrupoSet, error)
	SoftDelete(ctx context.Context, k models.Key, p models.SoftDeletePolicy, stamp models.ModStamp) (models.GrupoSet, error)
	HardDelete(ctx context.Context, k models.Key) (models.GrupoSet, error)
}

// Handler is the record controller: direct CRUD against MongoDB without
// the bitácora envelope. Failures are {"error": "..."} with HTTP 200.
type Handler struct {
	Store      Store
	SoftDelete models.SoftDeletePolicy
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger

	Now   func() time.Time
	NewID func() string
}

// NewHandler constructs a record controller over store.
func NewHandler(store Store, policy models.SoftDeletePolicy, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:      store,
		SoftDelete: policy,
		ErrLog:     errLog,
		Log:        logger,
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}
