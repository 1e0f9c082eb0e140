package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendMongo = "mongo"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend string // "file" (default), "bolt" or "mongo"
	Dir     string // file and bolt backends
	Mongo   MongoOptions
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendBolt:
		return NewBoltStore(opts.Dir)
	case BackendMongo:
		return NewMongoStore(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
