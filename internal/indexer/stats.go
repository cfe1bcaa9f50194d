package indexer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (m *Manager) Stats(ctx context.Context, collection string) ([]IndexStats, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cursor, err := m.db.Collection(collection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$indexStats", Value: bson.D{}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get index stats")
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err = cursor.All(ctx, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode stats")
	}

	stats := make([]IndexStats, 0, len(raw))
	for _, r := range raw {
		stats = append(stats, parseStats(r))
	}
	return stats, nil
}

func parseStats(raw bson.M) IndexStats {
	stat := IndexStats{}
	stat.Name, _ = raw["name"].(string)
	stat.Host, _ = raw["host"].(string)
	stat.Building, _ = raw["building"].(bool)

	if accesses, ok := raw["accesses"].(bson.M); ok {
		switch ops := accesses["ops"].(type) {
		case int64:
			stat.Accesses = ops
		case int32:
			stat.Accesses = int64(ops)
		}
		switch since := accesses["since"].(type) {
		case primitive.DateTime:
			stat.Since = since.Time()
		case time.Time:
			stat.Since = since
		}
	}
	return stat
}

func (m *Manager) StatsAll(ctx context.Context) (map[string][]IndexStats, error) {
	results := make(map[string][]IndexStats)
	for _, name := range m.Collections() {
		stats, err := m.Stats(ctx, name)
		if err != nil {
			if m.options.ContinueOnError {
				results[name] = []IndexStats{}
				continue
			}
			return nil, errors.Wrapf(err, "failed to get stats for %s", name)
		}
		results[name] = stats
	}
	return results, nil
}
