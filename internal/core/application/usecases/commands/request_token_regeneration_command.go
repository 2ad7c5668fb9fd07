package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrRequestTokenRegenerationCommandIsNotConstructed = errors.New(
	"RequestTokenRegenerationCommand must be created via NewRequestTokenRegenerationCommand constructor",
)

// RequestTokenRegenerationCommand asks for a fresh generation token, typically
// after the previous one expired unredeemed.
type RequestTokenRegenerationCommand struct {
	parcelID          kernel.UUID
	claimedIdentifier string

	guard guard.ConstructorGuard
}

func NewRequestTokenRegenerationCommand(parcelID kernel.UUID, claimedIdentifier string) (RequestTokenRegenerationCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return RequestTokenRegenerationCommand{}, err
	}
	if claimedIdentifier == "" {
		return RequestTokenRegenerationCommand{}, errs.NewValueIsRequiredError("identifier")
	}
	return RequestTokenRegenerationCommand{
		parcelID:          parcelID,
		claimedIdentifier: claimedIdentifier,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c RequestTokenRegenerationCommand) Validate() error {
	return c.guard.Validate(ErrRequestTokenRegenerationCommandIsNotConstructed)
}

func (c RequestTokenRegenerationCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c RequestTokenRegenerationCommand) ClaimedIdentifier() string {
	return c.claimedIdentifier
}
