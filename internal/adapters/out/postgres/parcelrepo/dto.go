// Package parcelrepo persists parcel aggregates with GORM.
package parcelrepo

import (
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"

	"github.com/google/uuid"
)

// ParcelDTO is one parcel row. LockerID is NULL once the parcel was reported
// missing. The (status, deposited_at) index serves both sweeps.
type ParcelDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LockerID       *int       `gorm:"index"`
	Size           int        `gorm:"not null"`
	Recipient      string     `gorm:"not null"`
	Status         int        `gorm:"not null;index:idx_parcels_status_deposited,priority:1"`
	DepositedAt    time.Time  `gorm:"not null;index:idx_parcels_status_deposited,priority:2"`
	PickedUpAt     *time.Time
	ClosedAt       *time.Time
	ReminderSentAt *time.Time
}

func (ParcelDTO) TableName() string {
	return "parcels"
}

func fromDomain(p *parcel.Parcel) ParcelDTO {
	return ParcelDTO{
		ID:             p.ID().Bytes(),
		LockerID:       p.LockerID(),
		Size:           int(p.Size()),
		Recipient:      p.Recipient().String(),
		Status:         int(p.Status()),
		DepositedAt:    p.DepositedAt(),
		PickedUpAt:     p.PickedUpAt(),
		ClosedAt:       p.ClosedAt(),
		ReminderSentAt: p.ReminderSentAt(),
	}
}

func toDomain(dto ParcelDTO) (*parcel.Parcel, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	recipient, err := kernel.NewRecipient(dto.Recipient)
	if err != nil {
		return nil, err
	}

	return parcel.RestoreParcel(
		id,
		dto.LockerID,
		locker.SizeClass(dto.Size),
		recipient,
		parcel.Status(dto.Status),
		dto.DepositedAt,
		dto.PickedUpAt,
		dto.ClosedAt,
		dto.ReminderSentAt,
	)
}
