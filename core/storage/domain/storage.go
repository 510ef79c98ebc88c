package domain

import "context"

// IStorage is the durable per-origin key/value store. Values are opaque strings
// (JSON documents in practice); a missing key is reported with ok=false, not an error.
type IStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Well-known keys.
const (
	KeySettings     = "speedsolverx_settings"
	KeyRecentSolves = "recentSolves"
)
