package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrRequestPinRegenerationCommandIsNotConstructed = errors.New(
	"RequestPinRegenerationCommand must be created via NewRequestPinRegenerationCommand constructor",
)

// RequestPinRegenerationCommand asks for a new PIN on behalf of the recipient,
// who proves the parcel's contact identifier.
type RequestPinRegenerationCommand struct {
	parcelID          kernel.UUID
	claimedIdentifier string

	guard guard.ConstructorGuard
}

func NewRequestPinRegenerationCommand(parcelID kernel.UUID, claimedIdentifier string) (RequestPinRegenerationCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return RequestPinRegenerationCommand{}, err
	}
	if claimedIdentifier == "" {
		return RequestPinRegenerationCommand{}, errs.NewValueIsRequiredError("identifier")
	}
	return RequestPinRegenerationCommand{
		parcelID:          parcelID,
		claimedIdentifier: claimedIdentifier,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c RequestPinRegenerationCommand) Validate() error {
	return c.guard.Validate(ErrRequestPinRegenerationCommandIsNotConstructed)
}

func (c RequestPinRegenerationCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c RequestPinRegenerationCommand) ClaimedIdentifier() string {
	return c.claimedIdentifier
}
