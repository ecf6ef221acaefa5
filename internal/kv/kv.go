// Package kv provides the shared handle to the external key-value store.
//
// The store is a Redis-compatible endpoint configured through either the
// Vercel KV or the Upstash environment naming convention. When neither pair
// is present, or the client cannot be constructed, the process runs in
// fallback mode: Client returns nil and the persistence services keep all
// data in memory instead.
package kv

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Store.Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is the slice of store operations the persistence services use.
// A ttl of zero means the key never expires.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var (
	clientOnce sync.Once
	client     *redis.Client
)

// Client returns the process-wide store client, or nil when no store is
// configured. The result is computed once and never retried: credentials
// that become valid later require a restart. No connection is attempted
// here; an unreachable store surfaces on the first actual operation.
func Client() *redis.Client {
	clientOnce.Do(func() {
		storeURL := firstEnv("KV_REST_API_URL", "UPSTASH_REDIS_REST_URL")
		storeToken := firstEnv("KV_REST_API_TOKEN", "UPSTASH_REDIS_REST_TOKEN")
		if storeURL == "" || storeToken == "" {
			log.Println("kv: store not configured, using in-memory fallback")
			return
		}

		opt, err := clientOptions(storeURL, storeToken)
		if err != nil {
			log.Printf("kv: invalid store configuration, using in-memory fallback: %v", err)
			return
		}
		client = redis.NewClient(opt)
	})
	return client
}

// clientOptions builds redis options from a store URL and access token.
// Upstash publishes an https REST URL; the same host speaks the redis
// protocol over TLS on the default port.
func clientOptions(storeURL, storeToken string) (*redis.Options, error) {
	if strings.HasPrefix(storeURL, "redis://") || strings.HasPrefix(storeURL, "rediss://") {
		opt, err := redis.ParseURL(storeURL)
		if err != nil {
			return nil, err
		}
		if opt.Password == "" {
			opt.Password = storeToken
		}
		tune(opt)
		return opt, nil
	}

	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("store url %q has no host", storeURL)
	}

	opt := &redis.Options{
		Addr:     u.Hostname() + ":6379",
		Password: storeToken,
	}
	if u.Scheme == "https" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	tune(opt)
	return opt, nil
}

// tune applies the pool sizing and timeouts used for all store clients.
func tune(opt *redis.Options) {
	opt.PoolSize = 10
	opt.MinIdleConns = 5
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
}

// Wrap adapts a redis client to the Store interface. A nil client yields a
// nil Store, which the persistence services treat as "no store configured".
func Wrap(rdb *redis.Client) Store {
	if rdb == nil {
		return nil
	}
	return &redisStore{rdb: rdb}
}

type redisStore struct {
	rdb *redis.Client
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return val, err
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// firstEnv returns the first non-empty value among the given variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}
