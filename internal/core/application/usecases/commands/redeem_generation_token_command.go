package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrRedeemGenerationTokenCommandIsNotConstructed = errors.New(
	"RedeemGenerationTokenCommand must be created via NewRedeemGenerationTokenCommand constructor",
)

// RedeemGenerationTokenCommand exchanges a generation token for a PIN.
type RedeemGenerationTokenCommand struct {
	parcelID kernel.UUID
	token    string

	guard guard.ConstructorGuard
}

func NewRedeemGenerationTokenCommand(parcelID kernel.UUID, token string) (RedeemGenerationTokenCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return RedeemGenerationTokenCommand{}, err
	}
	if token == "" {
		return RedeemGenerationTokenCommand{}, errs.NewValueIsRequiredError("token")
	}
	return RedeemGenerationTokenCommand{
		parcelID: parcelID,
		token:    token,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RedeemGenerationTokenCommand) Validate() error {
	return c.guard.Validate(ErrRedeemGenerationTokenCommandIsNotConstructed)
}

func (c RedeemGenerationTokenCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c RedeemGenerationTokenCommand) Token() string {
	return c.token
}
