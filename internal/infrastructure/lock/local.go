package lock

import (
	"context"
	"sync"
	"time"
)

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is a per-key mutex for a single process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: map[string]*slot{}}
}

func (l *LocalLocker) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Lock blocks until key is free or ctx is done. ttl is ignored; a local
// holder cannot vanish without releasing.
func (l *LocalLocker) Lock(ctx context.Context, key string, _ time.Duration) (func(), error) {
	s := l.acquire(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}
