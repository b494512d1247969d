package contracts

import (
	"context"
	"time"
)

// RedisRepository holds the owner-checked primitives behind the distributed leader lock.
// Each call is atomic on the server.
type RedisRepository interface {
	TrySetNX(ctx context.Context, key, value string, exp time.Duration) (bool, error)
	// DeleteIfEquals removes key only while it still holds value.
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
	// ExpireIfEquals resets the TTL of key only while it still holds value.
	ExpireIfEquals(ctx context.Context, key, value string, exp time.Duration) (bool, error)
}
