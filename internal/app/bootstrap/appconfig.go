// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, log level and format. AppConfig
// carries the GRUPOSET backends and request handling settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoCollection  string // GRUPOSET collection (default: ztgruposet)
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Azure Cosmos DB configuration. The azure backend is registered only
	// when a connection string or endpoint+key is present.
	CosmosEndpoint         string
	CosmosKey              string
	CosmosConnectionString string
	CosmosDatabase         string
	CosmosContainer        string // partition key path /IDSOCIEDAD
	CosmosParallelism      int    // concurrent inserts per batch create

	// Logical delete behavior per backend
	SoftDeleteMongo models.SoftDeletePolicy
	SoftDeleteAzure models.SoftDeletePolicy

	// Request handling
	MaxBodyBytes    int64  // request body limit (default: 500 KiB)
	AuditLog        string // bitácora destination: "all", "db", "log" or "off"
	AuditCollection string // MongoDB collection for stored bitácoras
	RateLimit       int    // API requests per client IP per minute; 0 disables

	// Backend call deadlines; zero keeps the built-in default.
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutBatch time.Duration
}

// CosmosEnabled reports whether the azure backend is configured.
func (c AppConfig) CosmosEnabled() bool {
	return c.CosmosConnectionString != "" || (c.CosmosEndpoint != "" && c.CosmosKey != "")
}

// AuditToDB reports whether bitácoras are stored in MongoDB.
func (c AppConfig) AuditToDB() bool {
	return c.AuditLog == "all" || c.AuditLog == "db"
}
