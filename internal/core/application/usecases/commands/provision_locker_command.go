package commands

import (
	"errors"
	"fmt"
	"strings"

	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrProvisionLockerCommandIsNotConstructed = errors.New(
	"ProvisionLockerCommand must be created via NewProvisionLockerCommand constructor",
)

// ProvisionLockerCommand adds a new free locker to the pool.
type ProvisionLockerCommand struct {
	id    int
	label string
	size  locker.SizeClass

	guard guard.ConstructorGuard
}

func NewProvisionLockerCommand(id int, label string, size locker.SizeClass) (ProvisionLockerCommand, error) {
	var errList []error
	if id <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("locker id", fmt.Errorf("%d is not greater than 0", id)))
	}
	label = strings.TrimSpace(label)
	if label == "" {
		errList = append(errList, errs.NewValueIsRequiredError("label"))
	}
	if err := size.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return ProvisionLockerCommand{}, err
	}

	return ProvisionLockerCommand{
		id:    id,
		label: label,
		size:  size,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c ProvisionLockerCommand) Validate() error {
	return c.guard.Validate(ErrProvisionLockerCommandIsNotConstructed)
}

func (c ProvisionLockerCommand) ID() int {
	return c.id
}

func (c ProvisionLockerCommand) Label() string {
	return c.label
}

func (c ProvisionLockerCommand) Size() locker.SizeClass {
	return c.size
}
