// Package credentialrepo persists parcel credentials with GORM. Only hashes and
// expiries are stored; a PIN never reaches the database.
package credentialrepo

import (
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type CredentialDTO struct {
	ParcelID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	State                int       `gorm:"not null"`
	PINHash              []byte    `gorm:"type:bytea"`
	PINExpiry            *time.Time
	TokenHash            []byte `gorm:"type:bytea"`
	TokenExpiry          *time.Time
	DailyGenerationCount int    `gorm:"not null;default:0"`
	LastGenerationDate   string `gorm:"type:varchar(10)"`
	VerifiedAt           *time.Time
}

func (CredentialDTO) TableName() string {
	return "credentials"
}

func fromDomain(c *credential.Credential) CredentialDTO {
	r := c.Snapshot()
	return CredentialDTO{
		ParcelID:             r.ParcelID.Bytes(),
		State:                int(r.State),
		PINHash:              r.PINHash,
		PINExpiry:            r.PINExpiry,
		TokenHash:            r.TokenHash,
		TokenExpiry:          r.TokenExpiry,
		DailyGenerationCount: r.DailyGenerationCount,
		LastGenerationDate:   r.LastGenerationDate,
		VerifiedAt:           r.VerifiedAt,
	}
}

func toDomain(dto CredentialDTO) (*credential.Credential, error) {
	parcelID, err := kernel.UUIDFromBytes(dto.ParcelID[:])
	if err != nil {
		return nil, err
	}

	return credential.RestoreCredential(credential.Record{
		ParcelID:             parcelID,
		State:                credential.State(dto.State),
		PINHash:              dto.PINHash,
		PINExpiry:            dto.PINExpiry,
		TokenHash:            dto.TokenHash,
		TokenExpiry:          dto.TokenExpiry,
		DailyGenerationCount: dto.DailyGenerationCount,
		LastGenerationDate:   dto.LastGenerationDate,
		VerifiedAt:           dto.VerifiedAt,
	})
}
