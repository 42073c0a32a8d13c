package mongodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const DefaultConnectTimeout = 10 * time.Second

// Dialer opens short lived clients, one per request.
type Dialer struct {
	connectTimeout time.Duration
	tracingEnabled bool
}

func NewDialer(connectTimeout time.Duration, tracingEnabled bool) *Dialer {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Dialer{
		connectTimeout: connectTimeout,
		tracingEnabled: tracingEnabled,
	}
}

func (d *Dialer) Dial(ctx context.Context, uri string) (*Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(d.connectTimeout).
		SetServerSelectionTimeout(d.connectTimeout)
	if d.tracingEnabled {
		clientOptions.SetMonitor(otelmongo.NewMonitor())
	}

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &Client{client: mongoClient}, nil
}

type Client struct {
	client *mongo.Client
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// ListDatabaseNames returns the names sorted ascending.
func (c *Client) ListDatabaseNames(ctx context.Context) ([]string, error) {
	names, err := c.client.ListDatabaseNames(ctx, bson.D{}, options.ListDatabases().SetNameOnly(true))
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return sortedNonEmpty(names), nil
}

// ListCollectionNames returns the names sorted ascending.
func (c *Client) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	names, err := c.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return sortedNonEmpty(names), nil
}

// SampleDocuments returns up to limit random documents. Collections not larger
// than limit are returned whole.
func (c *Client) SampleDocuments(ctx context.Context, database, collection string, limit int) ([]bson.Raw, error) {
	coll := c.client.Database(database).Collection(collection)

	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return []bson.Raw{}, nil
	}
	if count <= int64(limit) {
		return c.AllDocuments(ctx, database, collection)
	}

	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: limit}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sample documents: %w", err)
	}
	return readAll(ctx, cursor)
}

func (c *Client) AllDocuments(ctx context.Context, database, collection string) ([]bson.Raw, error) {
	return c.Find(ctx, database, collection, bson.D{}, 0)
}

// Find runs filter against the collection. A limit of 0 means no limit.
func (c *Client) Find(ctx context.Context, database, collection string, filter any, limit int64) ([]bson.Raw, error) {
	findOptions := options.Find()
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := c.client.Database(database).Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return readAll(ctx, cursor)
}

// InsertOne stores document and returns its id. ObjectIDs are returned as hex strings.
func (c *Client) InsertOne(ctx context.Context, database, collection string, document bson.D) (any, error) {
	result, err := c.client.Database(database).Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return result.InsertedID, nil
}

func readAll(ctx context.Context, cursor *mongo.Cursor) ([]bson.Raw, error) {
	documents := []bson.Raw{}
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	return documents, nil
}

func sortedNonEmpty(names []string) []string {
	result := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			result = append(result, n)
		}
	}
	sort.Strings(result)
	return result
}
