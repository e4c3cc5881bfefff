package indexManager

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// rwLock is a reader/writer lock whose acquisition can be abandoned through a context.
// Readers take one unit, writers take all of them. The semaphore queues waiters in order,
// so a waiting writer holds back later readers.
type rwLock struct {
	sem *semaphore.Weighted
	max int64
}

func newRWLock(maxReaders int64) *rwLock {
	return &rwLock{sem: semaphore.NewWeighted(maxReaders), max: maxReaders}
}

func (l *rwLock) RLock(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *rwLock) RUnlock() {
	l.sem.Release(1)
}

func (l *rwLock) Lock(ctx context.Context) error {
	return l.sem.Acquire(ctx, l.max)
}

func (l *rwLock) Unlock() {
	l.sem.Release(l.max)
}
