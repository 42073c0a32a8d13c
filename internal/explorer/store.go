package explorer

import (
	"context"

	"github.com/2beens/mongoextract/internal/extract"
	"github.com/2beens/mongoextract/internal/mongodb"

	"go.mongodb.org/mongo-driver/bson"
)

//go:generate mockgen -source=$GOFILE -destination=store_mock_test.go -package=explorer

var _ MongoStore = (*mongodb.Client)(nil)

// MongoStore is one open connection to a MongoDB deployment.
type MongoStore interface {
	extract.Source
	ListDatabaseNames(ctx context.Context) ([]string, error)
	Find(ctx context.Context, database, collection string, filter any, limit int64) ([]bson.Raw, error)
	InsertOne(ctx context.Context, database, collection string, document bson.D) (any, error)
	Close(ctx context.Context) error
}

type Dialer interface {
	Dial(ctx context.Context, uri string) (MongoStore, error)
}

type DialFunc func(ctx context.Context, uri string) (MongoStore, error)

func (f DialFunc) Dial(ctx context.Context, uri string) (MongoStore, error) {
	return f(ctx, uri)
}

// NewMongoDialer adapts the driver backed dialer.
func NewMongoDialer(d *mongodb.Dialer) Dialer {
	return DialFunc(func(ctx context.Context, uri string) (MongoStore, error) {
		client, err := d.Dial(ctx, uri)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
