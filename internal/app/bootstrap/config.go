// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/cinnalovers/secgruposet/internal/app/store/audit"
	cosmosgruposetstore "github.com/cinnalovers/secgruposet/internal/app/store/cosmosgruposets"
	gruposetstore "github.com/cinnalovers/secgruposet/internal/app/store/gruposets"
	"github.com/cinnalovers/secgruposet/internal/app/system/auditlog"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 500 << 10

// appConfigKeys defines the configuration keys for the service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, cosmos_endpoint, etc.
//   - Environment variables: SECGRUPOSET_MONGO_URI, SECGRUPOSET_COSMOS_KEY, etc.
//   - Command-line flags: --mongo_uri, --cosmos_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "db_security", Desc: "MongoDB database name"},
	{Name: "mongo_collection", Default: gruposetstore.DefaultCollection, Desc: "GRUPOSET collection name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Azure Cosmos DB
	{Name: "cosmos_endpoint", Default: "", Desc: "Cosmos DB account endpoint"},
	{Name: "cosmos_key", Default: "", Desc: "Cosmos DB account key"},
	{Name: "cosmos_connection_string", Default: "", Desc: "Cosmos DB connection string (overrides endpoint/key)"},
	{Name: "cosmos_database", Default: "db_security", Desc: "Cosmos DB database name"},
	{Name: "cosmos_container", Default: gruposetstore.DefaultCollection, Desc: "Cosmos DB container name; must be partitioned on " + cosmosgruposetstore.PartitionKeyPath},
	{Name: "cosmos_create_parallelism", Default: cosmosgruposetstore.DefaultParallelism, Desc: "Concurrent Cosmos inserts per batch create"},

	// Logical delete policy
	{Name: "softdelete_mongodb", Default: string(models.SoftDeleteSet), Desc: "Logical delete on mongodb: 'set' or 'toggle'"},
	{Name: "softdelete_azure", Default: string(models.SoftDeleteToggle), Desc: "Logical delete on azure: 'set' or 'toggle'"},

	// Request handling
	{Name: "max_body_bytes", Default: defaultMaxBodyBytes, Desc: "Maximum request body size in bytes"},
	{Name: "audit_log", Default: auditlog.ModeLog, Desc: "Bitácora logging: 'log' (zap only), 'all' (db+log), 'db', or 'off'"},
	{Name: "audit_collection", Default: audit.DefaultCollection, Desc: "MongoDB collection for stored bitácoras"},
	{Name: "rate_limit_per_minute", Default: 0, Desc: "API requests per client IP per minute (0 disables)"},

	// Backend deadlines
	{Name: "timeout_read", Default: "", Desc: "Read timeout override (e.g., 10s)"},
	{Name: "timeout_write", Default: "", Desc: "Write timeout override (e.g., 10s)"},
	{Name: "timeout_batch", Default: "", Desc: "Batch create timeout override (e.g., 60s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SECGRUPOSET_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// Soft-delete policies that do not parse are kept raw here and rejected by
// ValidateConfig.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SECGRUPOSET", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoCollection:  appValues.String("mongo_collection"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Cosmos
		CosmosEndpoint:         appValues.String("cosmos_endpoint"),
		CosmosKey:              appValues.String("cosmos_key"),
		CosmosConnectionString: appValues.String("cosmos_connection_string"),
		CosmosDatabase:         appValues.String("cosmos_database"),
		CosmosContainer:        appValues.String("cosmos_container"),
		CosmosParallelism:      appValues.Int("cosmos_create_parallelism"),

		// Request handling
		MaxBodyBytes:    int64(appValues.Int("max_body_bytes")),
		AuditLog:        appValues.String("audit_log"),
		AuditCollection: appValues.String("audit_collection"),
		RateLimit:       appValues.Int("rate_limit_per_minute"),

		// Deadlines
		TimeoutRead:  appValues.Duration("timeout_read", 0),
		TimeoutWrite: appValues.Duration("timeout_write", 0),
		TimeoutBatch: appValues.Duration("timeout_batch", 0),
	}
	appCfg.SoftDeleteMongo = policyOrRaw(appValues.String("softdelete_mongodb"))
	appCfg.SoftDeleteAzure = policyOrRaw(appValues.String("softdelete_azure"))

	if appCfg.MaxBodyBytes <= 0 {
		appCfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	return coreCfg, appCfg, nil
}

func policyOrRaw(s string) models.SoftDeletePolicy {
	if p, err := models.ParseSoftDeletePolicy(s); err == nil {
		return p
	}
	return models.SoftDeletePolicy(s)
}

// ValidateConfig performs app-specific config validation.
//
// It validates the MongoDB URI format, the soft-delete policies, and that
// the Cosmos endpoint and key are given together.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if _, err := models.ParseSoftDeletePolicy(string(appCfg.SoftDeleteMongo)); err != nil {
		return fmt.Errorf("softdelete_mongodb: %w", err)
	}
	if _, err := models.ParseSoftDeletePolicy(string(appCfg.SoftDeleteAzure)); err != nil {
		return fmt.Errorf("softdelete_azure: %w", err)
	}

	if appCfg.CosmosConnectionString == "" && (appCfg.CosmosEndpoint == "") != (appCfg.CosmosKey == "") {
		return errors.New("cosmos_endpoint and cosmos_key must be set together")
	}
	switch appCfg.AuditLog {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log must be 'all', 'db', 'log' or 'off', got %q", appCfg.AuditLog)
	}

	if appCfg.RateLimit < 0 {
		return errors.New("rate_limit_per_minute must not be negative")
	}

	if appCfg.CosmosEnabled() && (appCfg.CosmosDatabase == "" || appCfg.CosmosContainer == "") {
		return errors.New("cosmos_database and cosmos_container are required when Cosmos is configured")
	}

	return nil
}
