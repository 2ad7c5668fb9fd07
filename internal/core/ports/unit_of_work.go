// Package ports defines the contracts between the parcel locker core and its
// infrastructure: persistence through a unit of work, notification delivery,
// the audit trail and the sweep lease.
package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle. Rollback after a
// successful Commit changes nothing, so it can always be deferred and its error
// ignored.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Repositories are bound to the transaction started by Begin.
	LockerRepository() LockerRepository
	ParcelRepository() ParcelRepository
	CredentialRepository() CredentialRepository
}
