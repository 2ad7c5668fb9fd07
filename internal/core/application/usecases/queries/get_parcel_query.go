// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models; they never mutate aggregates.
package queries

import (
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/guard"
)

var ErrGetParcelQueryIsNotConstructed = errors.New(
	"GetParcelQuery must be created via NewGetParcelQuery constructor",
)

// GetParcelQuery reads the state of one parcel, including whether its PIN has
// expired. Callers use PINExpired to tell an expired PIN from a wrong one before
// attempting pickup.
//
// Example:
//
//	query, err := NewGetParcelQuery(parcelID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
//	if view.PINExpired {
//	    // ask the recipient to request a new PIN
//	}
type GetParcelQuery struct {
	parcelID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetParcelQuery(parcelID kernel.UUID) (GetParcelQuery, error) {
	if err := parcelID.Validate(); err != nil {
		return GetParcelQuery{}, err
	}
	return GetParcelQuery{parcelID: parcelID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetParcelQuery) Validate() error {
	return q.guard.Validate(ErrGetParcelQueryIsNotConstructed)
}

func (q GetParcelQuery) ParcelID() kernel.UUID {
	return q.parcelID
}

// GetParcelQueryResponse is the parcel read model. Status uses the reporting
// label, so an expired parcel reads "return_to_sender".
type GetParcelQueryResponse struct {
	ID              kernel.UUID
	Status          string
	Size            string
	LockerID        *int
	LockerLabel     string
	DepositedAt     time.Time
	PickedUpAt      *time.Time
	ReminderSentAt  *time.Time
	CredentialState string
	PINExpiry       *time.Time
	PINExpired      bool
	TokenExpiry     *time.Time
}
