package commands

import (
	"errors"
	"strings"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrForceReissuePinCommandIsNotConstructed = errors.New(
	"ForceReissuePinCommand must be created via NewForceReissuePinCommand constructor",
)

// ForceReissuePinCommand is the administrative PIN reissue. It skips the
// identifier check and the daily cap, never the audit trail.
type ForceReissuePinCommand struct {
	parcelID kernel.UUID
	admin    string

	guard guard.ConstructorGuard
}

func NewForceReissuePinCommand(parcelID kernel.UUID, admin string) (ForceReissuePinCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return ForceReissuePinCommand{}, err
	}
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return ForceReissuePinCommand{}, errs.NewValueIsRequiredError("admin")
	}
	return ForceReissuePinCommand{
		parcelID: parcelID,
		admin:    admin,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ForceReissuePinCommand) Validate() error {
	return c.guard.Validate(ErrForceReissuePinCommandIsNotConstructed)
}

func (c ForceReissuePinCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c ForceReissuePinCommand) Admin() string {
	return c.admin
}
