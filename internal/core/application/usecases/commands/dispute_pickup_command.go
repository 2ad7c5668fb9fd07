package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrDisputePickupCommandIsNotConstructed = errors.New(
	"DisputePickupCommand must be created via NewDisputePickupCommand constructor",
)

// DisputePickupCommand lets the recipient dispute the contents shortly after
// pickup. The claimed identifier must match the parcel's recipient.
type DisputePickupCommand struct {
	parcelID          kernel.UUID
	claimedIdentifier string

	guard guard.ConstructorGuard
}

func NewDisputePickupCommand(parcelID kernel.UUID, claimedIdentifier string) (DisputePickupCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return DisputePickupCommand{}, err
	}
	if claimedIdentifier == "" {
		return DisputePickupCommand{}, errs.NewValueIsRequiredError("identifier")
	}
	return DisputePickupCommand{
		parcelID:          parcelID,
		claimedIdentifier: claimedIdentifier,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c DisputePickupCommand) Validate() error {
	return c.guard.Validate(ErrDisputePickupCommandIsNotConstructed)
}

func (c DisputePickupCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c DisputePickupCommand) ClaimedIdentifier() string {
	return c.claimedIdentifier
}
