// Package memory is an in-process persistence adapter. A Store holds every
// record; a UnitOfWork takes the store's single transaction slot in Begin and
// keeps it until Commit or Rollback, so transactions are serializable. It backs
// single-node development runs and deterministic tests.
package memory

import (
	"maps"
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/ports"
)

type lockerRow struct {
	id     int
	label  string
	size   locker.SizeClass
	status locker.Status
}

type parcelRow struct {
	id             kernel.UUID
	lockerID       *int
	size           locker.SizeClass
	recipient      kernel.Recipient
	status         parcel.Status
	depositedAt    time.Time
	pickedUpAt     *time.Time
	closedAt       *time.Time
	reminderSentAt *time.Time
}

type tables struct {
	lockers     map[int]lockerRow
	parcels     map[kernel.UUID]parcelRow
	credentials map[kernel.UUID]credential.Record
}

func (t tables) clone() tables {
	return tables{
		lockers:     maps.Clone(t.lockers),
		parcels:     maps.Clone(t.parcels),
		credentials: maps.Clone(t.credentials),
	}
}

// Store is safe for concurrent use through its units of work.
type Store struct {
	slot chan struct{}
	data tables
}

func NewStore() *Store {
	return &Store{
		slot: make(chan struct{}, 1),
		data: tables{
			lockers:     map[int]lockerRow{},
			parcels:     map[kernel.UUID]parcelRow{},
			credentials: map[kernel.UUID]credential.Record{},
		},
	}
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

func lockerFromRow(r lockerRow) (*locker.Locker, error) {
	return locker.RestoreLocker(r.id, r.label, r.size, r.status)
}

func lockerToRow(l *locker.Locker) lockerRow {
	return lockerRow{id: l.ID(), label: l.Label(), size: l.Size(), status: l.Status()}
}

func parcelFromRow(r parcelRow) (*parcel.Parcel, error) {
	return parcel.RestoreParcel(r.id, r.lockerID, r.size, r.recipient, r.status,
		r.depositedAt, r.pickedUpAt, r.closedAt, r.reminderSentAt)
}

func parcelToRow(p *parcel.Parcel) parcelRow {
	return parcelRow{
		id:             p.ID(),
		lockerID:       p.LockerID(),
		size:           p.Size(),
		recipient:      p.Recipient(),
		status:         p.Status(),
		depositedAt:    p.DepositedAt(),
		pickedUpAt:     copyTime(p.PickedUpAt()),
		closedAt:       copyTime(p.ClosedAt()),
		reminderSentAt: copyTime(p.ReminderSentAt()),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
