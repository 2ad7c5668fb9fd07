package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrPickUpParcelCommandIsNotConstructed = errors.New(
	"PickUpParcelCommand must be created via NewPickUpParcelCommand constructor",
)

// PickUpParcelCommand presents a PIN for a parcel.
type PickUpParcelCommand struct {
	parcelID kernel.UUID
	pin      string

	guard guard.ConstructorGuard
}

func NewPickUpParcelCommand(parcelID kernel.UUID, pin string) (PickUpParcelCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return PickUpParcelCommand{}, err
	}
	if pin == "" {
		return PickUpParcelCommand{}, errs.NewValueIsRequiredError("pin")
	}

	return PickUpParcelCommand{
		parcelID: parcelID,
		pin:      pin,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c PickUpParcelCommand) Validate() error {
	return c.guard.Validate(ErrPickUpParcelCommandIsNotConstructed)
}

func (c PickUpParcelCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c PickUpParcelCommand) PIN() string {
	return c.pin
}
