package contracts

import (
	"context"
	"time"
)

// LockerService elects one instance to run the availability and overdue sweeps.
// TryLock returns an owner token that Unlock and Refresh must present.
type LockerService interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
	Refresh(ctx context.Context, key, token string, expiration time.Duration) error
}
