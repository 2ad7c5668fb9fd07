package commands

import (
	"errors"
	"fmt"
	"strings"

	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrSetLockerStatusCommandIsNotConstructed = errors.New(
	"SetLockerStatusCommand must be created via NewSetLockerStatusCommand constructor",
)

// SetLockerStatusCommand is the administrative override of a locker status.
// Only free and out_of_service are accepted.
type SetLockerStatusCommand struct {
	lockerID int
	target   locker.Status
	admin    string

	guard guard.ConstructorGuard
}

func NewSetLockerStatusCommand(lockerID int, target locker.Status, admin string) (SetLockerStatusCommand, error) {
	var errList []error
	if lockerID <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("locker id", fmt.Errorf("%d is not greater than 0", lockerID)))
	}
	if !target.IsAdminTarget() {
		errList = append(errList, fmt.Errorf("%w: %s", locker.ErrStatusNotAllowed, target))
	}
	admin = strings.TrimSpace(admin)
	if admin == "" {
		errList = append(errList, errs.NewValueIsRequiredError("admin"))
	}
	if err := errors.Join(errList...); err != nil {
		return SetLockerStatusCommand{}, err
	}

	return SetLockerStatusCommand{
		lockerID: lockerID,
		target:   target,
		admin:    admin,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SetLockerStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetLockerStatusCommandIsNotConstructed)
}

func (c SetLockerStatusCommand) LockerID() int {
	return c.lockerID
}

func (c SetLockerStatusCommand) Target() locker.Status {
	return c.target
}

func (c SetLockerStatusCommand) Admin() string {
	return c.admin
}
