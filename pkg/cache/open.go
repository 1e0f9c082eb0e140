package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string // "file" (default), "redis" or "none"
	Dir     string // FileCache directory
	Redis   RedisOptions
}

// Open creates the cache described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
