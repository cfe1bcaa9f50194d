// Package indexer creates and inspects the MongoDB indexes the storefront
// reads rely on.
package indexer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexDefinition struct {
	Collection string
	Index      mongo.IndexModel
}

// Name returns the configured index name, or "" when Mongo picks one.
func (d IndexDefinition) Name() string {
	if d.Index.Options == nil || d.Index.Options.Name == nil {
		return ""
	}
	return *d.Index.Options.Name
}

type Manager struct {
	db      *mongo.Database
	indexes []IndexDefinition
	options *Options
}

type Options struct {
	Timeout         time.Duration
	ContinueOnError bool
	SkipIfExists    bool
}

type Result struct {
	SuccessCount int             `json:"successCount"`
	SkippedCount int             `json:"skippedCount"`
	FailedCount  int             `json:"failedCount"`
	Failures     []FailureDetail `json:"failures"`
	Duration     time.Duration   `json:"duration"`
}

type FailureDetail struct {
	Collection string `json:"collection"`
	IndexName  string `json:"indexName"`
	Error      string `json:"error"`
}

type IndexStats struct {
	Name     string    `json:"name"`
	Accesses int64     `json:"accesses"`
	Since    time.Time `json:"since"`
	Host     string    `json:"host"`
	Building bool      `json:"building"`
}

func DefaultOptions() *Options {
	return &Options{
		Timeout:         60 * time.Second,
		ContinueOnError: true,
		SkipIfExists:    true,
	}
}

func NewManager(db *mongo.Database, opts ...*Options) *Manager {
	o := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	return &Manager{db: db, options: o}
}

func (m *Manager) AddIndex(collection string, index mongo.IndexModel) *Manager {
	m.indexes = append(m.indexes, IndexDefinition{Collection: collection, Index: index})
	return m
}

func (m *Manager) AddCompoundIndex(collection string, fields []string, opts ...*options.IndexOptions) *Manager {
	keys := bson.D{}
	for _, field := range fields {
		keys = append(keys, bson.E{Key: field, Value: 1})
	}

	indexOpts := options.Index()
	if len(opts) > 0 {
		indexOpts = opts[0]
	}
	return m.AddIndex(collection, mongo.IndexModel{Keys: keys, Options: indexOpts})
}

func (m *Manager) LoadFromDefinitions(definitions []IndexDefinition) *Manager {
	m.indexes = append(m.indexes, definitions...)
	return m
}

// Definitions returns the registered indexes in registration order.
func (m *Manager) Definitions() []IndexDefinition {
	return append([]IndexDefinition(nil), m.indexes...)
}

// Collections returns each collection with a registered index, once.
func (m *Manager) Collections() []string {
	seen := map[string]bool{}
	var out []string
	for _, def := range m.indexes {
		if !seen[def.Collection] {
			seen[def.Collection] = true
			out = append(out, def.Collection)
		}
	}
	return out
}
