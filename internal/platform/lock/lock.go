// Package lock provides named, cluster-wide exclusive leases. The retention
// scheduler takes one around every batch run so that two service instances,
// or an overrunning run and the next tick, never execute concurrently.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned by TryLock when another holder owns the lease.
var ErrNotAcquired = errors.New("lock held by another owner")

// Locker grants leases without blocking.
type Locker interface {
	TryLock(ctx context.Context, name string) (Lease, error)
}

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Memory is a process-local Locker.
type Memory struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]bool)}
}

func (m *Memory) TryLock(_ context.Context, name string) (Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[name] {
		return nil, ErrNotAcquired
	}
	m.held[name] = true
	return &memoryLease{owner: m, name: name}, nil
}

type memoryLease struct {
	owner *Memory
	name  string
	once  sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		l.owner.mu.Lock()
		delete(l.owner.held, l.name)
		l.owner.mu.Unlock()
	})
	return nil
}
