package commands

import (
	"errors"
	"fmt"

	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrSendRemindersCommandIsNotConstructed = errors.New(
	"SendRemindersCommand must be created via NewSendRemindersCommand constructor",
)

// SendRemindersCommand sends the single pickup reminder to up to batchSize
// eligible parcels.
type SendRemindersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewSendRemindersCommand(batchSize int) (SendRemindersCommand, error) {
	if batchSize <= 0 {
		return SendRemindersCommand{}, errs.NewValueIsInvalidErrorWithCause("batch size",
			fmt.Errorf("%d is not greater than 0", batchSize))
	}
	return SendRemindersCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SendRemindersCommand) Validate() error {
	return c.guard.Validate(ErrSendRemindersCommandIsNotConstructed)
}

func (c SendRemindersCommand) BatchSize() int {
	return c.batchSize
}
