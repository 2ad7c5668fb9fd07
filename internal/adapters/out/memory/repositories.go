package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/pkg/errs"
)

type lockerRepository struct {
	uow *UnitOfWork
}

func (r *lockerRepository) Add(_ context.Context, aggregate *locker.Locker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.lockers[aggregate.ID()]; exists {
		return errs.NewValueIsInvalidErrorWithCause("locker id", fmt.Errorf("locker %d already exists", aggregate.ID()))
	}
	t.lockers[aggregate.ID()] = lockerToRow(aggregate)
	return nil
}

func (r *lockerRepository) Update(_ context.Context, aggregate *locker.Locker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.lockers[aggregate.ID()]; !exists {
		return errs.NewObjectNotFoundError("locker", aggregate.ID())
	}
	t.lockers[aggregate.ID()] = lockerToRow(aggregate)
	return nil
}

func (r *lockerRepository) Get(_ context.Context, id int) (*locker.Locker, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}
	row, ok := t.lockers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("locker", id)
	}
	return lockerFromRow(row)
}

// GetForUpdate needs no row lock: the unit of work already owns the store.
func (r *lockerRepository) GetForUpdate(ctx context.Context, id int) (*locker.Locker, error) {
	return r.Get(ctx, id)
}

func (r *lockerRepository) FindFreeFitting(_ context.Context, size locker.SizeClass, limit int) ([]*locker.Locker, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}

	rows := make([]lockerRow, 0)
	for _, row := range t.lockers {
		if row.status == locker.Free && row.size.Accommodates(size) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return lockersFromRows(rows)
}

func (r *lockerRepository) GetAll(_ context.Context) ([]*locker.Locker, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}

	rows := make([]lockerRow, 0, len(t.lockers))
	for _, row := range t.lockers {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	return lockersFromRows(rows)
}

func lockersFromRows(rows []lockerRow) ([]*locker.Locker, error) {
	lockers := make([]*locker.Locker, 0, len(rows))
	for _, row := range rows {
		l, err := lockerFromRow(row)
		if err != nil {
			return nil, err
		}
		lockers = append(lockers, l)
	}
	return lockers, nil
}

type parcelRepository struct {
	uow *UnitOfWork
}

func (r *parcelRepository) Add(_ context.Context, aggregate *parcel.Parcel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.parcels[aggregate.ID()]; exists {
		return errs.NewValueIsInvalidErrorWithCause("parcel id", fmt.Errorf("parcel %s already exists", aggregate.ID()))
	}
	t.parcels[aggregate.ID()] = parcelToRow(aggregate)
	return nil
}

func (r *parcelRepository) Update(_ context.Context, aggregate *parcel.Parcel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.parcels[aggregate.ID()]; !exists {
		return errs.NewObjectNotFoundError("parcel", aggregate.ID())
	}
	t.parcels[aggregate.ID()] = parcelToRow(aggregate)
	return nil
}

func (r *parcelRepository) Get(_ context.Context, id kernel.UUID) (*parcel.Parcel, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}
	row, ok := t.parcels[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("parcel", id)
	}
	return parcelFromRow(row)
}

func (r *parcelRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error) {
	return r.Get(ctx, id)
}

func (r *parcelRepository) ExistsActiveForLocker(_ context.Context, lockerID int) (bool, error) {
	t, err := r.uow.tables()
	if err != nil {
		return false, err
	}
	for _, row := range t.parcels {
		if row.lockerID != nil && *row.lockerID == lockerID && row.status.HoldsLocker() {
			return true, nil
		}
	}
	return false, nil
}

func (r *parcelRepository) FindDueForReminder(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	return r.findDeposited(limit, func(row parcelRow) bool {
		return row.reminderSentAt == nil && !row.depositedAt.After(cutoff)
	})
}

func (r *parcelRepository) FindOverdue(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	return r.findDeposited(limit, func(row parcelRow) bool {
		return row.depositedAt.Before(cutoff)
	})
}

func (r *parcelRepository) findDeposited(limit int, match func(parcelRow) bool) ([]kernel.UUID, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}

	rows := make([]parcelRow, 0)
	for _, row := range t.parcels {
		if row.status == parcel.Deposited && match(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].depositedAt.Before(rows[j].depositedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	ids := make([]kernel.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.id)
	}
	return ids, nil
}

type credentialRepository struct {
	uow *UnitOfWork
}

func (r *credentialRepository) Add(_ context.Context, aggregate *credential.Credential) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.credentials[aggregate.ParcelID()]; exists {
		return errs.NewValueIsInvalidErrorWithCause("credential", fmt.Errorf("credential for %s already exists", aggregate.ParcelID()))
	}
	t.credentials[aggregate.ParcelID()] = aggregate.Snapshot()
	return nil
}

func (r *credentialRepository) Update(_ context.Context, aggregate *credential.Credential) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	t, err := r.uow.tables()
	if err != nil {
		return err
	}
	if _, exists := t.credentials[aggregate.ParcelID()]; !exists {
		return errs.NewObjectNotFoundError("credential", aggregate.ParcelID())
	}
	t.credentials[aggregate.ParcelID()] = aggregate.Snapshot()
	return nil
}

func (r *credentialRepository) Get(_ context.Context, parcelID kernel.UUID) (*credential.Credential, error) {
	t, err := r.uow.tables()
	if err != nil {
		return nil, err
	}
	record, ok := t.credentials[parcelID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("credential", parcelID)
	}
	return credential.RestoreCredential(record)
}
