// Package redislease implements ports.SweepLease on Redis so that only one
// process runs the expiry and reminder sweep at a time.
package redislease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds this holder's token,
// so an expired lease taken over by another process is never released.
// KEYS[1] = lease key
// ARGV[1] = holder token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a single-holder lock with a TTL shared by every process that uses
// the same key.
type Lease struct {
	client redis.UniversalClient
	key    string
}

func New(client redis.UniversalClient, key string) *Lease {
	return &Lease{client: client, key: key}
}

// Acquire takes the lease for ttl. It returns false without error when another
// holder has it.
func (l *Lease) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back if token still owns it.
func (l *Lease) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lease %s: %w", l.key, err)
	}
	return nil
}
