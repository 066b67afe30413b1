package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker serialises work per key. Release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type local struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLocal returns a Locker scoped to this process.
func NewLocal() Locker {
	return &local{sems: map[string]*semaphore.Weighted{}}
}

func (l *local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}
