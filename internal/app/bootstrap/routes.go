// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	bitacorasfeature "github.com/cinnalovers/secgruposet/internal/app/features/bitacoras"
	errorsfeature "github.com/cinnalovers/secgruposet/internal/app/features/errors"
	"github.com/cinnalovers/secgruposet/internal/app/features/gruposetcrud"
	gruposetsfeature "github.com/cinnalovers/secgruposet/internal/app/features/gruposets"
	healthfeature "github.com/cinnalovers/secgruposet/internal/app/features/health"
	homefeature "github.com/cinnalovers/secgruposet/internal/app/features/home"
	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	cosmosgruposetstore "github.com/cinnalovers/secgruposet/internal/app/store/cosmosgruposets"
	gruposetstore "github.com/cinnalovers/secgruposet/internal/app/store/gruposets"
	"github.com/cinnalovers/secgruposet/internal/app/system/auditlog"
	"github.com/cinnalovers/secgruposet/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

var (
	_ gruposetcrud.Backend     = (*gruposetstore.Store)(nil)
	_ gruposetcrud.Backend     = (*cosmosgruposetstore.Store)(nil)
	_ gruposetsfeature.Store   = (*gruposetstore.Store)(nil)
	_ auditlog.EventStore      = (*audit.Store)(nil)
	_ bitacorasfeature.Querier = (*audit.Store)(nil)
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// The mongodb backend is always registered; azure only when ConnectDB
// produced a Cosmos container. The record controller talks to MongoDB
// directly.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mongoStore := gruposetstore.New(deps.MongoDatabase, appCfg.MongoCollection)

	backends := gruposetcrud.Registry{
		gruposetcrud.BackendMongo: {
			Backend:       mongoStore,
			SoftDelete:    appCfg.SoftDeleteMongo,
			BodyAsChanges: true,
		},
	}
	if deps.CosmosContainer != nil {
		backends[gruposetcrud.BackendAzure] = gruposetcrud.Target{
			Backend:    cosmosgruposetstore.New(deps.CosmosContainer, appCfg.CosmosParallelism),
			SoftDelete: appCfg.SoftDeleteAzure,
		}
	}
	logger.Info("backends registered", zap.Strings("db_servers", backends.Names()))

	rd := routerDeps{
		backends: backends,
		records:  mongoStore,
		limiter:  deps.Limiter,
	}
	var events auditlog.EventStore
	if appCfg.AuditToDB() {
		auditStore := audit.New(deps.MongoDatabase, appCfg.AuditCollection)
		events = auditStore
		rd.bitacoras = auditStore
	}
	rd.auditLog = auditlog.New(events, logger, auditlog.Config{Mode: appCfg.AuditLog})

	return newRouter(appCfg, rd, logger), nil
}

// routerDeps are the already-built stores and services the router serves.
// bitacoras and limiter may be nil.
type routerDeps struct {
	backends  gruposetcrud.Registry
	records   gruposetsfeature.Store
	auditLog  *auditlog.Logger
	bitacoras bitacorasfeature.Querier
	limiter   *ratelimit.Limiter
}

// newRouter assembles middleware and feature routers.
func newRouter(appCfg AppConfig, rd routerDeps, logger *zap.Logger) chi.Router {
	backends := rd.backends
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if appCfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(appCfg.MaxBodyBytes))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	// Landing document
	homeHandler := homefeature.NewHandler(serviceName, backends.Names(), logger)
	r.Get("/", homeHandler.ServeRoot)

	// Health check endpoint for load balancers and orchestrators
	pingers := make(map[string]healthfeature.Pinger, len(backends))
	for name, t := range backends {
		pingers[name] = t.Backend
	}
	healthHandler := healthfeature.NewHandler(pingers, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// GRUPOSET: action endpoint plus the direct record controller
	dispatcher := gruposetcrud.NewDispatcher(backends, logger)
	crudHandler := gruposetcrud.NewHandler(dispatcher, rd.auditLog, logger)

	recordHandler := gruposetsfeature.NewHandler(rd.records, appCfg.SoftDeleteMongo, errLog, logger)

	bitacoraHandler := bitacorasfeature.NewHandler(rd.bitacoras, errLog, logger)

	r.Route("/api/security/gruposet", func(r chi.Router) {
		if rd.limiter != nil {
			r.Use(rd.limiter.Middleware)
		}
		r.Mount("/crud", gruposetcrud.Routes(crudHandler))
		r.Mount("/bitacora", bitacorasfeature.Routes(bitacoraHandler))
		r.Mount("/", gruposetsfeature.Routes(recordHandler))
	})

	return r
}
