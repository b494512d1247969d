package locker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedisRepository struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedisRepository() *fakeRedisRepository {
	return &fakeRedisRepository{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedisRepository) TrySetNX(ctx context.Context, key, value string, exp time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value
	f.ttls[key] = exp
	return true, nil
}

func (f *fakeRedisRepository) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[key] != value {
		return false, nil
	}
	delete(f.values, key)
	return true, nil
}

func (f *fakeRedisRepository) ExpireIfEquals(ctx context.Context, key, value string, exp time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[key] != value {
		return false, nil
	}
	f.ttls[key] = exp
	return true, nil
}

func TestLockService_OwnerToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRedisRepository()
	svc := NewLockService(repo, zap.NewNop())

	acquired, token, err := svc.TryLock(ctx, "overdue", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotEmpty(t, token)

	again, _, err := svc.TryLock(ctx, "overdue", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, svc.Refresh(ctx, "overdue", token, 2*time.Minute))
	assert.Equal(t, 2*time.Minute, repo.ttls["overdue"])
	assert.Error(t, svc.Refresh(ctx, "overdue", "someone-else", time.Minute))

	require.NoError(t, svc.Unlock(ctx, "overdue", "someone-else"))
	assert.Equal(t, token, repo.values["overdue"])

	require.NoError(t, svc.Unlock(ctx, "overdue", token))
	_, held := repo.values["overdue"]
	assert.False(t, held)
}

func TestLockService_RepositoryError(t *testing.T) {
	repo := newFakeRedisRepository()
	repo.err = errors.New("connection refused")

	acquired, token, err := NewLockService(repo, zap.NewNop()).TryLock(context.Background(), "overdue", time.Minute)
	assert.Error(t, err)
	assert.False(t, acquired)
	assert.Empty(t, token)
}

func TestLocalLockService_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC)
	svc := &localLockService{locks: make(map[string]localLock), now: func() time.Time { return now }}

	acquired, token, err := svc.TryLock(ctx, "availability", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, _, _ = svc.TryLock(ctx, "availability", time.Minute)
	assert.False(t, acquired)

	now = now.Add(2 * time.Minute)
	acquired, next, _ := svc.TryLock(ctx, "availability", time.Minute)
	assert.True(t, acquired)
	assert.NotEqual(t, token, next)

	require.NoError(t, svc.Unlock(ctx, "availability", token))
	acquired, _, _ = svc.TryLock(ctx, "availability", time.Minute)
	assert.False(t, acquired, "a stale token must not release the new holder")
}

func TestRunAsLeader(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalLockService()

	ran := RunAsLeader(ctx, svc, zap.NewNop(), "sweep", time.Minute, func(ctx context.Context) {
		inner := RunAsLeader(ctx, svc, zap.NewNop(), "sweep", time.Minute, func(context.Context) {
			t.Fatal("second leader must not run")
		})
		assert.False(t, inner)
	})
	assert.True(t, ran)

	ranAgain := RunAsLeader(ctx, svc, zap.NewNop(), "sweep", time.Minute, func(context.Context) {})
	assert.True(t, ranAgain, "the lock is released after the job")
}
