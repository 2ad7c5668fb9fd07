package commands

import (
	"errors"
	"fmt"

	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrExpireOverdueParcelsCommandIsNotConstructed = errors.New(
	"ExpireOverdueParcelsCommand must be created via NewExpireOverdueParcelsCommand constructor",
)

// ExpireOverdueParcelsCommand returns up to batchSize uncollected parcels to
// their senders once the pickup window has elapsed.
type ExpireOverdueParcelsCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewExpireOverdueParcelsCommand(batchSize int) (ExpireOverdueParcelsCommand, error) {
	if batchSize <= 0 {
		return ExpireOverdueParcelsCommand{}, errs.NewValueIsInvalidErrorWithCause("batch size",
			fmt.Errorf("%d is not greater than 0", batchSize))
	}
	return ExpireOverdueParcelsCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireOverdueParcelsCommand) Validate() error {
	return c.guard.Validate(ErrExpireOverdueParcelsCommandIsNotConstructed)
}

func (c ExpireOverdueParcelsCommand) BatchSize() int {
	return c.batchSize
}
