package indexer

import (
	"context"
	"time"

	"khoomi-api-io/storefront/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, m.options.Timeout)
}

func (m *Manager) Create(ctx context.Context) (*Result, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result := &Result{Failures: []FailureDetail{}}

	for _, def := range m.indexes {
		name := def.Name()
		if m.options.SkipIfExists && name != "" {
			exists, err := m.indexExists(ctx, def.Collection, name)
			if err == nil && exists {
				util.LogInfo("index already exists, skipping", zap.String("collection", def.Collection), zap.String("index", name))
				result.SkippedCount++
				continue
			}
		}

		created, err := m.db.Collection(def.Collection).Indexes().CreateOne(ctx, def.Index)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				util.LogWarning("cannot create unique index due to duplicate data", zap.String("collection", def.Collection), zap.String("index", name))
			} else {
				util.LogError("failed to create index", err, zap.String("collection", def.Collection), zap.String("index", name))
			}

			result.FailedCount++
			result.Failures = append(result.Failures, FailureDetail{
				Collection: def.Collection,
				IndexName:  name,
				Error:      err.Error(),
			})
			if !m.options.ContinueOnError {
				result.Duration = time.Since(start)
				return result, errors.Wrapf(err, "create index %s on %s", name, def.Collection)
			}
			continue
		}

		util.LogInfo("created index", zap.String("collection", def.Collection), zap.String("index", created))
		result.SuccessCount++
	}

	result.Duration = time.Since(start)
	if result.FailedCount > 0 {
		return result, errors.Errorf("%d indexes failed to create", result.FailedCount)
	}
	return result, nil
}

// Drop removes every index from collections, or from each registered
// collection when none are named.
func (m *Manager) Drop(ctx context.Context, collections ...string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if len(collections) == 0 {
		collections = m.Collections()
	}

	for _, name := range collections {
		if _, err := m.db.Collection(name).Indexes().DropAll(ctx); err != nil {
			if !m.options.ContinueOnError {
				return errors.Wrapf(err, "drop indexes for %s", name)
			}
			util.LogError("failed to drop indexes", err, zap.String("collection", name))
			continue
		}
		util.LogInfo("dropped all indexes", zap.String("collection", name))
	}
	return nil
}

func (m *Manager) List(ctx context.Context, collection string) ([]bson.M, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cursor, err := m.db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes for %s", collection)
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err = cursor.All(ctx, &indexes); err != nil {
		return nil, errors.Wrap(err, "decode indexes")
	}
	return indexes, nil
}

func (m *Manager) indexExists(ctx context.Context, collection, indexName string) (bool, error) {
	indexes, err := m.List(ctx, collection)
	if err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if name, ok := idx["name"].(string); ok && name == indexName {
			return true, nil
		}
	}
	return false, nil
}
