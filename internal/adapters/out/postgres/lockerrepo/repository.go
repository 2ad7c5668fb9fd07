package lockerrepo

import (
	"context"
	"errors"

	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLockerRepository implements ports.LockerRepository using GORM.
type GormLockerRepository struct {
	db *gorm.DB
}

func NewGormLockerRepository(db *gorm.DB) *GormLockerRepository {
	return &GormLockerRepository{db: db}
}

// Add inserts a new locker. A duplicate id is reported as an invalid value.
func (r *GormLockerRepository) Add(ctx context.Context, aggregate *locker.Locker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewValueIsInvalidError("locker id")
	}
	return nil
}

func (r *GormLockerRepository) Update(ctx context.Context, aggregate *locker.Locker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&LockerDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("locker", aggregate.ID())
	}
	return nil
}

func (r *GormLockerRepository) Get(ctx context.Context, id int) (*locker.Locker, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate reads the locker and holds its row lock until the transaction ends.
func (r *GormLockerRepository) GetForUpdate(ctx context.Context, id int) (*locker.Locker, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormLockerRepository) get(ctx context.Context, db *gorm.DB, id int) (*locker.Locker, error) {
	var dto LockerDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("locker", id)
		}
		return nil, err
	}
	return toDomain(dto)
}

// FindFreeFitting locks up to limit free lockers that can hold size, lowest id
// first. Rows already locked by a concurrent reservation are skipped, so two
// deposits never wait on each other for the same compartment.
func (r *GormLockerRepository) FindFreeFitting(ctx context.Context, size locker.SizeClass, limit int) ([]*locker.Locker, error) {
	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND size >= ?", int(locker.Free), int(size)).
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []LockerDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormLockerRepository) GetAll(ctx context.Context) ([]*locker.Locker, error) {
	var dtos []LockerDTO
	if err := r.db.WithContext(ctx).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func toDomainList(dtos []LockerDTO) ([]*locker.Locker, error) {
	lockers := make([]*locker.Locker, 0, len(dtos))
	for _, dto := range dtos {
		l, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		lockers = append(lockers, l)
	}
	return lockers, nil
}
