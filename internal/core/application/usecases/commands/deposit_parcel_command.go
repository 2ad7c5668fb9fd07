package commands

import (
	"errors"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/pkg/guard"
)

var ErrDepositParcelCommandIsNotConstructed = errors.New(
	"DepositParcelCommand must be created via NewDepositParcelCommand constructor",
)

// DepositParcelCommand reserves a locker for a parcel of the given size and
// issues the recipient's first credential.
type DepositParcelCommand struct {
	size      locker.SizeClass
	recipient kernel.Recipient
	mode      services.DeliveryMode

	guard guard.ConstructorGuard
}

func NewDepositParcelCommand(
	size locker.SizeClass,
	recipient string,
	mode services.DeliveryMode,
) (DepositParcelCommand, error) {
	r, recipientErr := kernel.NewRecipient(recipient)
	if err := errors.Join(size.Validate(), recipientErr); err != nil {
		return DepositParcelCommand{}, err
	}

	return DepositParcelCommand{
		size:      size,
		recipient: r,
		mode:      mode,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c DepositParcelCommand) Validate() error {
	return c.guard.Validate(ErrDepositParcelCommandIsNotConstructed)
}

func (c DepositParcelCommand) Size() locker.SizeClass {
	return c.size
}

func (c DepositParcelCommand) Recipient() kernel.Recipient {
	return c.recipient
}

func (c DepositParcelCommand) Mode() services.DeliveryMode {
	return c.mode
}
