package util

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var loadEnvOnce sync.Once

// LoadEnvFor reads v from the environment after loading .env once.
func LoadEnvFor(v string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			LogInfo("no .env file found, using environment variables")
		}
	})
	return os.Getenv(v)
}

// ConnectDB opens a MongoDB client and pings it.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	LogInfo("starting MongoDB connection..")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}

	LogInfo("MongoDB connection successful")
	return client, nil
}

// GetCollection Get collection from Db
func GetCollection(client *mongo.Client, db, name string) *mongo.Collection {
	return client.Database(db).Collection(name)
}

// ConnectRedis parses a redis:// url and returns a client.
func ConnectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	LogInfo("redis connection configured", zap.String("addr", opts.Addr))
	return redis.NewClient(opts), nil
}
