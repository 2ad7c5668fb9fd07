package memory

import (
	"context"
	"errors"

	"parcellocker/internal/core/ports"
)

var ErrNoTransaction = errors.New("no active transaction")

// UnitOfWork works on a private copy of the store tables taken in Begin.
// Commit publishes the copy; Rollback drops it. Rollback without an active
// transaction is a no-op so it can always be deferred.
type UnitOfWork struct {
	store  *Store
	tx     *tables
	active bool
}

func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.active {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case uow.store.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	working := uow.store.data.clone()
	uow.tx = &working
	uow.active = true
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.store.data = *uow.tx
	uow.release()
	return nil
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return nil
	}
	uow.release()
	return nil
}

func (uow *UnitOfWork) release() {
	uow.tx = nil
	uow.active = false
	<-uow.store.slot
}

func (uow *UnitOfWork) LockerRepository() ports.LockerRepository {
	return &lockerRepository{uow: uow}
}

func (uow *UnitOfWork) ParcelRepository() ports.ParcelRepository {
	return &parcelRepository{uow: uow}
}

func (uow *UnitOfWork) CredentialRepository() ports.CredentialRepository {
	return &credentialRepository{uow: uow}
}

func (uow *UnitOfWork) tables() (*tables, error) {
	if !uow.active {
		return nil, ErrNoTransaction
	}
	return uow.tx, nil
}
