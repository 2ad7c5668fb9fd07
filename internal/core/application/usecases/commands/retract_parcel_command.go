package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/guard"
)

var ErrRetractParcelCommandIsNotConstructed = errors.New(
	"RetractParcelCommand must be created via NewRetractParcelCommand constructor",
)

// RetractParcelCommand lets the sender take a parcel back shortly after deposit.
type RetractParcelCommand struct {
	parcelID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRetractParcelCommand(parcelID kernel.UUID) (RetractParcelCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return RetractParcelCommand{}, err
	}
	return RetractParcelCommand{
		parcelID: parcelID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RetractParcelCommand) Validate() error {
	return c.guard.Validate(ErrRetractParcelCommandIsNotConstructed)
}

func (c RetractParcelCommand) ParcelID() kernel.UUID {
	return c.parcelID
}
