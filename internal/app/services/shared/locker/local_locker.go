package locker

import (
	"context"
	"hospital-service/internal/app/contracts"
	"sync"
	"time"

	"github.com/google/uuid"
)

type localLock struct {
	value     string
	expiresAt time.Time
}

// localLockService is the single-process LockerService used with the memory store driver.
type localLockService struct {
	mu    sync.Mutex
	locks map[string]localLock
	now   func() time.Time
}

func NewLocalLockService() contracts.LockerService {
	return &localLockService{
		locks: make(map[string]localLock),
		now:   time.Now,
	}
}

func (s *localLockService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.locks[key]; ok && s.now().Before(held.expiresAt) {
		return false, "", nil
	}
	lockValue := uuid.NewString()
	s.locks[key] = localLock{value: lockValue, expiresAt: s.now().Add(expiration)}
	return true, lockValue, nil
}

func (s *localLockService) Unlock(ctx context.Context, key, lockValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.locks[key]; ok && held.value == lockValue {
		delete(s.locks, key)
	}
	return nil
}

func (s *localLockService) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.locks[key]; ok && held.value == lockValue {
		held.expiresAt = s.now().Add(expiration)
		s.locks[key] = held
	}
	return nil
}
