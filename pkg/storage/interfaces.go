package storage

import (
	"context"
	"errors"
	"time"
)

// Collections managed by the portal.
const (
	CollectionMembers  = "members"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionEvents   = "events"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is a schemaless document as stored in the document database.
type Record map[string]interface{}

// ID returns the record's "id" attribute, or "".
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Region returns the record's "region" attribute, or "" when absent. An
// absent region is meaningful to the authorization layer: such records are
// visible only to all-regions scopes.
func (r Record) Region() string {
	region, _ := r["region"].(string)
	return region
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the document store consumed by the API layer.
type Store interface {
	// Get fetches one record, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)

	// Put writes a complete record under the given id.
	Put(ctx context.Context, collection, id string, record Record) error

	// Update merges a patch into an existing record and returns the merged
	// record, or ErrNotFound.
	Update(ctx context.Context, collection, id string, patch Record) (Record, error)

	// Delete removes a record, or ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// List returns every record in a collection.
	List(ctx context.Context, collection string) ([]Record, error)

	// HealthCheck verifies backend connectivity.
	HealthCheck(ctx context.Context) error
}

// Config for the storage backend.
type Config struct {
	// Type selects the backend: "memory" or "dynamodb".
	Type string

	// TablePrefix is prepended to collection names to form DynamoDB table
	// names, e.g. "portal-" -> "portal-members".
	TablePrefix string

	// Region is the AWS region.
	Region string

	// Endpoint overrides the DynamoDB endpoint (DynamoDB Local).
	Endpoint string

	// AccessKey/SecretKey override the default credential chain when set.
	AccessKey string
	SecretKey string

	// Timeout bounds individual storage calls.
	Timeout time.Duration
}

// DefaultConfig returns the local-development defaults.
func DefaultConfig() Config {
	return Config{
		Type:        "memory",
		TablePrefix: "portal-",
		Region:      "eu-west-1",
		Timeout:     10 * time.Second,
	}
}
