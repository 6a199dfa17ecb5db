package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinic-scheduling/internal/lock"
)

// doctorLocker implements lock.Locker with a per-doctor Redis key, so the
// critical section holds across every instance of the service. It fails
// fast when the lock is held rather than queueing; a contended booking can
// simply be retried.
type doctorLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDoctorLocker creates a distributed per-doctor locker. The TTL bounds
// how long a crashed holder can block a doctor's schedule.
func NewDoctorLocker(client *redis.Client, ttl time.Duration) lock.Locker {
	return &doctorLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *doctorLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:doctor:%s", doctorID.String())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire doctor lock: %w", err)
	}
	if !ok {
		return lock.ErrNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *doctorLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release doctor lock: %w", err)
	}
	return nil
}
