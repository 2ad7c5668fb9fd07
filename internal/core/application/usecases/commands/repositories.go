// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, and only then notification and audit.
package commands

import (
	"context"

	"parcellocker/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	LockerRepoFactory interface {
		LockerRepository() ports.LockerRepository
	}

	ParcelRepoFactory interface {
		ParcelRepository() ports.ParcelRepository
	}

	CredentialRepoFactory interface {
		CredentialRepository() ports.CredentialRepository
	}

	// UoW manages transactions across lockers, parcels and credentials.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   parcel, err := uow.ParcelRepository().GetForUpdate(ctx, id)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		LockerRepoFactory
		ParcelRepoFactory
		CredentialRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)

// UoWFactoryFunc adapts a plain constructor to UoWFactory, e.g. an adapter
// factory whose Create returns ports.UnitOfWork.
type UoWFactoryFunc func() UoW

func (f UoWFactoryFunc) Create() UoW {
	return f()
}
