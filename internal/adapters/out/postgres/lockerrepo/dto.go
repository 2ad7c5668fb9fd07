// Package lockerrepo persists locker aggregates with GORM.
package lockerrepo

import (
	"parcellocker/internal/core/domain/model/locker"
)

// LockerDTO is one compartment row. Status and size are stored as their integer
// codes; the composite index serves the free-locker search.
type LockerDTO struct {
	ID     int    `gorm:"primaryKey;autoIncrement:false"`
	Label  string `gorm:"not null"`
	Size   int    `gorm:"not null;index:idx_lockers_status_size,priority:2"`
	Status int    `gorm:"not null;index:idx_lockers_status_size,priority:1"`
}

func (LockerDTO) TableName() string {
	return "lockers"
}

func fromDomain(l *locker.Locker) LockerDTO {
	return LockerDTO{
		ID:     l.ID(),
		Label:  l.Label(),
		Size:   int(l.Size()),
		Status: int(l.Status()),
	}
}

func toDomain(dto LockerDTO) (*locker.Locker, error) {
	return locker.RestoreLocker(dto.ID, dto.Label, locker.SizeClass(dto.Size), locker.Status(dto.Status))
}
