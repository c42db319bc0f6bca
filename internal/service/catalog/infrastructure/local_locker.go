package infrastructure

import (
	"context"
	"sync"
)

// LocalLocker 是单实例部署时的进程内锁，按资源 ID 加锁
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(resourceID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[resourceID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[resourceID] = ch
	}
	return ch
}

// WithLock 实现了 domain.Locker 接口，等待锁时响应 ctx 取消
func (l *LocalLocker) WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	ch := l.slot(resourceID)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-ch }()
	return fn(ctx)
}
