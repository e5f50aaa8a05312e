// Package store is the document-store boundary: named collections of
// free-form JSON documents addressed by 24-hex object IDs.
package store

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the key every stored document carries its ID under
const IDField = "_id"

var (
	// ErrNotFound is returned when no document has the requested ID.
	ErrNotFound = errors.New("store: document not found")

	// ErrInvalidID is returned for IDs that are not 24-hex object IDs.
	ErrInvalidID = errors.New("store: invalid document id")
)

// Document is a free-form JSON object.
type Document map[string]any

// Filter selects documents whose fields equal every given value.
// An empty filter selects everything.
type Filter map[string]any

// InsertResult mirrors the node driver's insertOne reply.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult mirrors the node driver's updateOne reply.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// DeleteResult mirrors the node driver's deleteOne reply.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is a single named collection.
type Collection interface {
	Find(ctx context.Context, filter Filter) ([]Document, error)
	FindByID(ctx context.Context, id string) (Document, error)
	Insert(ctx context.Context, doc Document) (InsertResult, error)
	UpdateByID(ctx context.Context, id string, set Document, upsert bool) (UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (DeleteResult, error)
}

// Database hands out collections by name.
type Database interface {
	Collection(name string) (Collection, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewID returns a fresh 24-hex object ID.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a 24-hex object ID.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// filterID returns the hex id an _id filter value names. Anything other
// than a 24-hex string is ErrInvalidID, on every driver.
func filterID(v any) (string, error) {
	id, ok := v.(string)
	if !ok || !ValidID(id) {
		return "", ErrInvalidID
	}
	return id, nil
}

// validName guards collection and field names that end up in queries.
func validName(name string) bool {
	return namePattern.MatchString(name)
}

// withoutID returns a shallow copy of doc minus its _id.
func withoutID(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}
