// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	cosmosgruposetstore "github.com/cinnalovers/secgruposet/internal/app/store/cosmosgruposets"
	"github.com/cinnalovers/secgruposet/internal/app/system/indexes"
	"github.com/cinnalovers/secgruposet/internal/app/system/ratelimit"
	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"github.com/cinnalovers/secgruposet/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and, when configured, the Cosmos
// container client. The API rate limiter is created here too so Shutdown
// can stop its sweeper.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.String("collection", appCfg.MongoCollection))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}
	if appCfg.RateLimit > 0 {
		deps.Limiter = ratelimit.New(appCfg.RateLimit, time.Minute)
	}

	if !appCfg.CosmosEnabled() {
		logger.Info("Cosmos DB not configured; azure backend disabled")
		return deps, nil
	}
	cc, err := cosmosgruposetstore.Connect(cosmosgruposetstore.Config{
		Endpoint:         appCfg.CosmosEndpoint,
		Key:              appCfg.CosmosKey,
		ConnectionString: appCfg.CosmosConnectionString,
		Database:         appCfg.CosmosDatabase,
		Container:        appCfg.CosmosContainer,
	})
	if err != nil {
		if deps.Limiter != nil {
			deps.Limiter.Close()
		}
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	deps.CosmosContainer = cc
	logger.Info("Cosmos DB container configured",
		zap.String("database", appCfg.CosmosDatabase),
		zap.String("container", appCfg.CosmosContainer))
	return deps, nil
}

// EnsureSchema creates the GRUPOSET collection with its validator and
// indexes, plus the bitácora indexes when bitácoras are stored. Cosmos
// containers are provisioned outside the service.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, appCfg.MongoCollection); err != nil {
		logger.Error("validator setup failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, appCfg.MongoCollection); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	if appCfg.AuditToDB() {
		if err := audit.New(deps.MongoDatabase, appCfg.AuditCollection).EnsureIndexes(ctx); err != nil {
			logger.Error("audit index setup failed", zap.Error(err))
			return err
		}
	}
	return nil
}
