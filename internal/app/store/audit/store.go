// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds one document per finished bitácora.
const DefaultCollection = "gruposet_bitacora"

// Event is the stored summary of one dispatch. Result data is not kept;
// Count records how many items it held.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	// Which dispatch
	BitacoraID  string `bson:"bitacora_id" json:"bitacoraId"`
	ProcessType string `bson:"process_type" json:"processType"`
	DBServer    string `bson:"db_server" json:"dbServer"`
	LoggedUser  string `bson:"logged_user" json:"loggedUser"`

	// Context
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"userAgent,omitempty"`

	// Outcome
	Success    bool   `bson:"success" json:"success"`
	Status     int    `bson:"status" json:"status"`
	Process    string `bson:"process,omitempty" json:"process,omitempty"`
	MessageUSR string `bson:"message_usr,omitempty" json:"messageUSR,omitempty"`
	MessageDEV string `bson:"message_dev,omitempty" json:"messageDEV,omitempty"`
	Count      int    `bson:"count" json:"count"`
}

// QueryFilter defines filters for querying stored events.
type QueryFilter struct {
	ProcessType string
	DBServer    string
	LoggedUser  string
	Success     *bool
	StartTime   *time.Time
	EndTime     *time.Time
	Limit       int64
}

// Store manages bitácora records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store over collection.
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{c: db.Collection(collection)}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Query by time range (most recent first)
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		// Query by user
		{
			Keys: bson.D{
				{Key: "logged_user", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by operation and backend
		{
			Keys: bson.D{
				{Key: "process_type", Value: 1},
				{Key: "db_server", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.ProcessType != "" {
		query["process_type"] = filter.ProcessType
	}
	if filter.DBServer != "" {
		query["db_server"] = filter.DBServer
	}
	if filter.LoggedUser != "" {
		query["logged_user"] = filter.LoggedUser
	}
	if filter.Success != nil {
		query["success"] = *filter.Success
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		ts := bson.M{}
		if filter.StartTime != nil {
			ts["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			ts["$lte"] = *filter.EndTime
		}
		query["timestamp"] = ts
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
