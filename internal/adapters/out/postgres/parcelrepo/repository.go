package parcelrepo

import (
	"context"
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the statuses whose parcel still occupies its locker.
var activeStatuses = []int{int(parcel.Deposited), int(parcel.PickupDisputed)}

// GormParcelRepository implements ports.ParcelRepository using GORM.
type GormParcelRepository struct {
	db *gorm.DB
}

func NewGormParcelRepository(db *gorm.DB) *GormParcelRepository {
	return &GormParcelRepository{db: db}
}

func (r *GormParcelRepository) Add(ctx context.Context, aggregate *parcel.Parcel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormParcelRepository) Update(ctx context.Context, aggregate *parcel.Parcel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ParcelDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("parcel", aggregate.ID())
	}
	return nil
}

func (r *GormParcelRepository) Get(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate reads the parcel and holds its row lock until the transaction ends.
func (r *GormParcelRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormParcelRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*parcel.Parcel, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ParcelDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("parcel", id)
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormParcelRepository) ExistsActiveForLocker(ctx context.Context, lockerID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ParcelDTO{}).
		Where("locker_id = ? AND status IN ?", lockerID, activeStatuses).
		Count(&count).Error
	return count > 0, err
}

// FindDueForReminder lists deposited parcels never reminded and deposited at or
// before cutoff, oldest first.
func (r *GormParcelRepository) FindDueForReminder(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	return r.pluckDeposited(ctx, limit, "reminder_sent_at IS NULL AND deposited_at <= ?", cutoff)
}

// FindOverdue lists deposited parcels deposited strictly before cutoff, oldest first.
func (r *GormParcelRepository) FindOverdue(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	return r.pluckDeposited(ctx, limit, "deposited_at < ?", cutoff)
}

func (r *GormParcelRepository) pluckDeposited(ctx context.Context, limit int, where string, args ...any) ([]kernel.UUID, error) {
	query := r.db.WithContext(ctx).Model(&ParcelDTO{}).
		Where("status = ?", int(parcel.Deposited)).
		Where(where, args...).
		Order("deposited_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var raw []uuid.UUID
	if err := query.Pluck("id", &raw).Error; err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := kernel.UUIDFromBytes(value[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
