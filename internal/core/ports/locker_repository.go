package ports

import (
	"context"

	"parcellocker/internal/core/domain/model/locker"
)

// LockerRepository defines the persistence contract for locker aggregates.
type LockerRepository interface {
	// Add persists a newly provisioned locker. Identifiers are unique.
	Add(ctx context.Context, aggregate *locker.Locker) error

	// Update persists a status change of an existing locker.
	Update(ctx context.Context, aggregate *locker.Locker) error

	// Get returns the locker or *errs.ObjectNotFoundError.
	Get(ctx context.Context, id int) (*locker.Locker, error)

	// GetForUpdate is Get with the row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id int) (*locker.Locker, error)

	// FindFreeFitting returns up to limit free lockers whose size class is the
	// requested one or larger, ordered by identifier. The returned rows are locked
	// for the transaction; rows locked by concurrent transactions are skipped, so
	// two reservations never see the same locker.
	FindFreeFitting(ctx context.Context, size locker.SizeClass, limit int) ([]*locker.Locker, error)

	// GetAll returns every locker ordered by identifier.
	GetAll(ctx context.Context) ([]*locker.Locker, error)
}
