package credentialrepo

import (
	"context"
	"errors"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCredentialRepository implements ports.CredentialRepository using GORM.
// Credentials are always read after their parcel row is locked, so no row lock
// of their own is taken.
type GormCredentialRepository struct {
	db *gorm.DB
}

func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) Add(ctx context.Context, aggregate *credential.Credential) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCredentialRepository) Update(ctx context.Context, aggregate *credential.Credential) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&CredentialDTO{}).
		Where("parcel_id = ?", dto.ParcelID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("credential", aggregate.ParcelID())
	}
	return nil
}

func (r *GormCredentialRepository) Get(ctx context.Context, parcelID kernel.UUID) (*credential.Credential, error) {
	if err := parcelID.Validate(); err != nil {
		return nil, err
	}

	var dto CredentialDTO
	if err := r.db.WithContext(ctx).First(&dto, "parcel_id = ?", parcelID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("credential", parcelID)
		}
		return nil, err
	}
	return toDomain(dto)
}
