package ports

import (
	"context"
	"time"
)

// SweepLease guards the background sweep so that only one run is active at a
// time, within a process or across replicas.
type SweepLease interface {
	// Acquire returns ok=false when another run holds the lease. On success the
	// token identifies this holder. The lease expires on its own after ttl in
	// case the holder dies.
	Acquire(ctx context.Context, ttl time.Duration) (token string, ok bool, err error)

	// Release frees the lease only while token still holds it, so a holder whose
	// lease expired and was taken over cannot free the new holder's lease.
	Release(ctx context.Context, token string) error
}
