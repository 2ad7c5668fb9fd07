package ports

import (
	"context"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/parcel"
)

// ParcelRepository defines the persistence contract for parcel aggregates.
type ParcelRepository interface {
	Add(ctx context.Context, aggregate *parcel.Parcel) error
	Update(ctx context.Context, aggregate *parcel.Parcel) error

	// Get returns the parcel or *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error)

	// GetForUpdate is Get with the row locked until the transaction ends. Every
	// lifecycle transition loads its parcel this way, which serializes transitions
	// on the same parcel.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error)

	// ExistsActiveForLocker reports whether a parcel that still holds its locker
	// (deposited or pickup_disputed) references lockerID.
	ExistsActiveForLocker(ctx context.Context, lockerID int) (bool, error)

	// FindDueForReminder returns up to limit deposited parcels without a reminder
	// whose depositedAt is at or before cutoff, oldest first.
	FindDueForReminder(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)

	// FindOverdue returns up to limit deposited parcels whose depositedAt is
	// strictly before cutoff, oldest first.
	FindOverdue(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)
}
