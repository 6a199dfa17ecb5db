// Package lock defines the per-doctor mutual exclusion used around
// check-then-insert critical sections. All slot-touching operations for one
// doctor serialize on the doctor's lock; different doctors never contend.
package lock

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotAcquired is returned by try-lock implementations when the doctor's
// lock is already held. Callers surface it as "retry shortly".
var ErrNotAcquired = errors.New("doctor lock not acquired")

// Locker runs fn while holding the named doctor's lock.
type Locker interface {
	WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error
}

// KeyedMutex is the in-process Locker: one mutex per doctor, created on
// first use. Unlike the Redis locker it blocks instead of failing fast,
// which is the right behavior when all callers share the process.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *KeyedMutex) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	k.mu.Lock()
	m, ok := k.locks[doctorID]
	if !ok {
		m = &sync.Mutex{}
		k.locks[doctorID] = m
	}
	k.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
