package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds connection settings for the MongoDB document store.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// MongoDatabase is a Database backed by a MongoDB client.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Database = (*MongoDatabase)(nil)

// NewMongoDatabase connects with the Stable API v1 in strict mode and pings
// the deployment before returning.
func NewMongoDatabase(ctx context.Context, cfg MongoConfig) (*MongoDatabase, error) {
	if cfg.URI == "" {
		return nil, errors.New("store: mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("store: mongo database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	d := &MongoDatabase{client: client, db: client.Database(cfg.Database)}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return d, nil
}

func (d *MongoDatabase) Collection(name string) (Collection, error) {
	if !validName(name) {
		return nil, fmt.Errorf("store: invalid collection name %q", name)
	}
	return &MongoCollection{coll: d.db.Collection(name)}, nil
}

func (d *MongoDatabase) Ping(ctx context.Context) error {
	if err := d.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (d *MongoDatabase) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// MongoCollection adapts a *mongo.Collection to Collection.
type MongoCollection struct {
	coll *mongo.Collection
}

var _ Collection = (*MongoCollection)(nil)

func (c *MongoCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	query, err := toBSONFilter(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s cursor: %w", c.coll.Name(), err)
	}

	out := make([]Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, fromBSONDocument(m))
	}
	return out, nil
}

func (c *MongoCollection) FindByID(ctx context.Context, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var m bson.M
	err = c.coll.FindOne(ctx, bson.M{IDField: oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", id, c.coll.Name(), err)
	}
	return fromBSONDocument(m), nil
}

func (c *MongoCollection) Insert(ctx context.Context, doc Document) (InsertResult, error) {
	oid := primitive.NewObjectID()
	m := bson.M(withoutID(doc))
	m[IDField] = oid

	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return InsertResult{}, fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return InsertResult{Acknowledged: true, InsertedID: oid.Hex()}, nil
}

func (c *MongoCollection) UpdateByID(ctx context.Context, id string, set Document, upsert bool) (UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return UpdateResult{}, ErrInvalidID
	}

	res, err := c.coll.UpdateOne(ctx,
		bson.M{IDField: oid},
		bson.M{"$set": bson.M(withoutID(set))},
		options.Update().SetUpsert(upsert),
	)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update %s in %s: %w", id, c.coll.Name(), err)
	}

	out := UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if upserted, ok := res.UpsertedID.(primitive.ObjectID); ok {
		hex := upserted.Hex()
		out.UpsertedID = &hex
	}
	return out, nil
}

func (c *MongoCollection) DeleteByID(ctx context.Context, id string) (DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return DeleteResult{}, ErrInvalidID
	}

	res, err := c.coll.DeleteOne(ctx, bson.M{IDField: oid})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete %s from %s: %w", id, c.coll.Name(), err)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// toBSONFilter turns an equality filter into a query, converting an _id
// string into an ObjectID.
func toBSONFilter(filter Filter) (bson.M, error) {
	query := bson.M{}
	for k, v := range filter {
		if k == IDField {
			s, ok := v.(string)
			if !ok {
				return nil, ErrInvalidID
			}
			oid, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return nil, ErrInvalidID
			}
			query[k] = oid
			continue
		}
		query[k] = v
	}
	return query, nil
}

func fromBSONDocument(m bson.M) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = fromBSON(v)
	}
	return doc
}

// fromBSON maps driver types onto plain JSON-friendly values.
func fromBSON(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case bson.M:
		return map[string]any(fromBSONDocument(t))
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	default:
		return v
	}
}
