package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/laneview/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open builds the configured backend and reports its traffic to the store
// hooks. An empty backend name means "file" when Dir is set and "none"
// otherwise.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendNone
		if opts.Dir != "" {
			backend = BackendFile
		}
	}

	var (
		c   Cache
		err error
	)
	switch backend {
	case BackendNone:
		c = NewNullCache()
	case BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithHooks(c, backend), nil
}

// instrumented reports lookups and writes of a backend to the store hooks.
type instrumented struct {
	Cache
	backend string
}

// WithHooks wraps c so that hits, misses and writes are reported to
// observability.Store() under the backend name.
func WithHooks(c Cache, backend string) Cache {
	return &instrumented{Cache: c, backend: backend}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		observability.Store().OnStoreHit(ctx, c.backend)
	default:
		observability.Store().OnStoreMiss(ctx, c.backend)
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Store().OnStoreSet(ctx, c.backend, len(data))
	return nil
}
