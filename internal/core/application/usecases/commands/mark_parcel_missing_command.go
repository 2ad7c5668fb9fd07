package commands

import (
	"errors"
	"strings"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var ErrMarkParcelMissingCommandIsNotConstructed = errors.New(
	"MarkParcelMissingCommand must be created via NewMarkParcelMissingCommand constructor",
)

// MarkParcelMissingCommand reports a parcel as missing. reportedBy names the
// administrator or recipient for the audit trail.
type MarkParcelMissingCommand struct {
	parcelID   kernel.UUID
	reportedBy string

	guard guard.ConstructorGuard
}

func NewMarkParcelMissingCommand(parcelID kernel.UUID, reportedBy string) (MarkParcelMissingCommand, error) {
	if err := parcelID.Validate(); err != nil {
		return MarkParcelMissingCommand{}, err
	}
	reportedBy = strings.TrimSpace(reportedBy)
	if reportedBy == "" {
		return MarkParcelMissingCommand{}, errs.NewValueIsRequiredError("reportedBy")
	}
	return MarkParcelMissingCommand{
		parcelID:   parcelID,
		reportedBy: reportedBy,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c MarkParcelMissingCommand) Validate() error {
	return c.guard.Validate(ErrMarkParcelMissingCommandIsNotConstructed)
}

func (c MarkParcelMissingCommand) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c MarkParcelMissingCommand) ReportedBy() string {
	return c.reportedBy
}
