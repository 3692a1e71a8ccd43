// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/cinnalovers/secgruposet/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// CosmosContainer is nil when the azure backend is not configured.
	CosmosContainer *azcosmos.ContainerClient

	// Limiter is nil when rate_limit_per_minute is 0.
	Limiter *ratelimit.Limiter
}
