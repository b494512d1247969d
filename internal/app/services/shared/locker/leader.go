package locker

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// RunAsLeader runs job only when key is acquired, refreshing the lock at half its TTL
// until job returns. It reports whether job ran.
func RunAsLeader(ctx context.Context, lockerService contracts.LockerService, log *zap.Logger, key string, ttl time.Duration, job func(ctx context.Context)) bool {
	acquired, token, err := lockerService.TryLock(ctx, key, ttl)
	if err != nil {
		log.Warn("locker.RunAsLeader leader lock attempt failed",
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return false
	}
	if !acquired {
		log.Info("locker.RunAsLeader leader lock held by another instance",
			zap.String(constvars.LoggingRedisKey, key),
		)
		return false
	}
	defer func() {
		if err := lockerService.Unlock(context.Background(), key, token); err != nil {
			log.Warn("locker.RunAsLeader failed to release leader lock", zap.Error(err))
		}
	}()

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := lockerService.Refresh(refreshCtx, key, token, ttl); err != nil {
					log.Warn("locker.RunAsLeader failed to refresh leader lock TTL",
						zap.String(constvars.LoggingRedisKey, key),
						zap.Error(err),
					)
				}
			}
		}
	}()

	job(ctx)
	return true
}
