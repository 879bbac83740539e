package db

import (
	"context"
	"time"
)

// Store is the record-store facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces they actually use.
type Store interface {
	Pinger
	JSONStore
	KVStore
	SetStore
	Publisher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides plain key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// SetStore provides membership-set operations, used to enumerate
// records per office and globally.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
}

// Publisher delivers a payload to a pub/sub channel. Fire-and-forget:
// there is no delivery acknowledgment beyond the command succeeding.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
