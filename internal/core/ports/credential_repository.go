package ports

import (
	"context"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
)

// CredentialRepository stores credential records keyed by parcel identifier.
// Callers lock the parcel row first; the credential row follows that lock.
type CredentialRepository interface {
	Add(ctx context.Context, aggregate *credential.Credential) error
	Update(ctx context.Context, aggregate *credential.Credential) error
	Get(ctx context.Context, parcelID kernel.UUID) (*credential.Credential, error)
}
