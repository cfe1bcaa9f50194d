// Package config reads the storefront settings from the environment.
package config

import (
	"strconv"
	"strings"
	"time"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/pkg/errors"
)

type Config struct {
	MongoURI            string
	DBName              string
	RedisURL            string
	Secret              string
	Port                string
	GinMode             string
	KafkaBrokers        []string
	KafkaOrderTopic     string
	RevalidationTimeout time.Duration
	PendingCartTTL      time.Duration
	CartTTL             time.Duration
	RateLimit           uint
}

// Lookup returns the value of an environment variable.
type Lookup func(string) string

// Load builds a Config from .env and the process environment.
func Load() (*Config, error) {
	return FromLookup(util.LoadEnvFor)
}

// FromLookup builds a Config from get, applying defaults for optional keys.
func FromLookup(get Lookup) (*Config, error) {
	cfg := &Config{
		MongoURI:            get("MONGO_URI"),
		DBName:              withDefault(get("DB_NAME"), "khoomi"),
		RedisURL:            get("REDIS_URL"),
		Secret:              get("SECRET"),
		Port:                withDefault(get("PORT"), "8080"),
		GinMode:             withDefault(get("GIN_MODE"), "release"),
		KafkaOrderTopic:     withDefault(get("KAFKA_ORDER_TOPIC"), "storefront.orders"),
		RevalidationTimeout: common.REVALIDATION_TIMEOUT,
		PendingCartTTL:      common.PENDING_CART_TTL,
		CartTTL:             common.CART_ITEM_EXPIRATION_TIME,
		RateLimit:           100,
	}

	for _, b := range strings.Split(withDefault(get("KAFKA_BROKERS"), "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	var err error
	if cfg.RevalidationTimeout, err = duration(get, "REVALIDATION_TIMEOUT", cfg.RevalidationTimeout); err != nil {
		return nil, err
	}
	if cfg.PendingCartTTL, err = duration(get, "PENDING_CART_TTL", cfg.PendingCartTTL); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = duration(get, "CART_TTL", cfg.CartTTL); err != nil {
		return nil, err
	}
	if raw := get("RATE_LIMIT"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return nil, errors.Errorf("RATE_LIMIT must be a positive integer, got %q", raw)
		}
		cfg.RateLimit = uint(n)
	}

	switch {
	case cfg.MongoURI == "":
		return nil, errors.New("MONGO_URI is required")
	case cfg.RedisURL == "":
		return nil, errors.New("REDIS_URL is required")
	case cfg.Secret == "":
		return nil, errors.New("SECRET is required")
	}
	return cfg, nil
}

func duration(get Lookup, key string, fallback time.Duration) (time.Duration, error) {
	raw := get(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive", key)
	}
	return d, nil
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
