package infra

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yshulhan/customers/internal/config"
)

// Mongodb connects to mongodb and verifies the connection with a ping
func Mongodb(ctx context.Context, cfg config.MongoCfg) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d/?maxPoolSize=%d", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.MaxPoolSize)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}
