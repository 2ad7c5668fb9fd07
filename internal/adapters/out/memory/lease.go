package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lease is the single-process sweep guard: the current holder's token with an
// expiry.
type Lease struct {
	mu      sync.Mutex
	holder  string
	expires time.Time
	now     func() time.Time
}

func NewLease() *Lease {
	return &Lease{now: time.Now}
}

func (l *Lease) Acquire(_ context.Context, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.holder != "" && now.Before(l.expires) {
		return "", false, nil
	}
	l.holder = uuid.NewString()
	l.expires = now.Add(ttl)
	return l.holder, true, nil
}

// Release is a no-op unless token is the current holder.
func (l *Lease) Release(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if token == "" || token != l.holder {
		return nil
	}
	l.holder = ""
	return nil
}
