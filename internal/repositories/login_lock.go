package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	loginLockPrefix = "lock:login:"
	// DefaultLockTTL bounds how long a crashed holder can block a login
	DefaultLockTTL = 10 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

var ErrLockTimeout = errors.New("timed out waiting for login lock")

// Only delete the key if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLoginLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLoginLocker(client *redis.Client, ttl time.Duration) *RedisLoginLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLoginLocker{client: client, ttl: ttl}
}

func (l *RedisLoginLocker) Lock(ctx context.Context, logins ...string) (func(), error) {
	keys := lockKeys(logins)
	token := uuid.New().String()

	acquired := make([]string, 0, len(keys))
	release := func() {
		// release with a fresh context so a cancelled request still unlocks
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(acquired) - 1; i >= 0; i-- {
			releaseScript.Run(rctx, l.client, []string{acquired[i]}, token)
		}
	}

	for _, key := range keys {
		if err := l.acquire(ctx, key, token); err != nil {
			release()
			return nil, err
		}
		acquired = append(acquired, key)
	}

	return release, nil
}

func (l *RedisLoginLocker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(lockRetryDelay):
		}
	}
}

// LocalLoginLocker serializes logins within a single process.
type LocalLoginLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLoginLocker() *LocalLoginLocker {
	return &LocalLoginLocker{slots: make(map[string]*lockSlot)}
}

func (l *LocalLoginLocker) Lock(ctx context.Context, logins ...string) (func(), error) {
	keys := lockKeys(logins)

	acquired := make([]string, 0, len(keys))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			l.release(acquired[i])
		}
	}

	for _, key := range keys {
		slot := l.ref(key)
		select {
		case slot.ch <- struct{}{}:
			acquired = append(acquired, key)
		case <-ctx.Done():
			l.unref(key)
			release()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}

	return release, nil
}

func (l *LocalLoginLocker) ref(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLoginLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slots[key]
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLoginLocker) release(key string) {
	l.mu.Lock()
	slot := l.slots[key]
	l.mu.Unlock()

	<-slot.ch
	l.unref(key)
}

// lockKeys dedupes and sorts so every caller acquires in the same order.
func lockKeys(logins []string) []string {
	seen := make(map[string]struct{}, len(logins))
	keys := make([]string, 0, len(logins))
	for _, login := range logins {
		key := loginLockPrefix + login
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
