package service

import "sync"

// RequestLocks provides per-key locking, keyed by meal plan request ID. The
// lifecycle services use a shared instance so the plan-submit/status-flip
// pair and the payment check-then-insert pair cannot interleave for the same
// request.
type RequestLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRequestLocks() *RequestLocks {
	return &RequestLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Locks are never
// evicted; the key space is bounded by live meal plan requests.
func (k *RequestLocks) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
}

func (k *RequestLocks) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	k.mu.Unlock()
	if l != nil {
		l.Unlock()
	}
}
