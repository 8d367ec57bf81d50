package cache

import "context"

// Store memoizes stage outputs. Presence of a key is treated as a valid hit;
// content is never inspected.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Has(ctx context.Context, key Key) (bool, error)
	Put(ctx context.Context, key Key, data []byte) error
	List(ctx context.Context, stage Stage) ([]Key, error)
	Path(key Key) string
}
