package commands

import (
	"context"
	"strconv"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

// MarkParcelMissingCommandHandler detaches a deposited or disputed parcel from
// its locker, takes the locker out of service for inspection and alerts the
// administrator contact.
type MarkParcelMissingCommandHandler struct {
	uowFactory   UoWFactory
	lifecycle    *services.ParcelLifecycle
	collab       Collaborators
	adminContact string
}

// NewMarkParcelMissingCommandHandler creates a MarkParcelMissingCommandHandler.
func NewMarkParcelMissingCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
	adminContact string,
) MarkParcelMissingCommandHandler {
	return MarkParcelMissingCommandHandler{
		uowFactory:   uowFactory,
		lifecycle:    lifecycle,
		collab:       collab,
		adminContact: adminContact,
	}
}

// Handle detaches the parcel from its locker and alerts the operator.
func (h MarkParcelMissingCommandHandler) Handle(ctx context.Context, command MarkParcelMissingCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := h.collab.Clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	state, err := loadParcelState(ctx, uow, command.ParcelID())
	if err != nil {
		return err
	}
	l, err := state.lockerOrMissing(parcel.Missing)
	if err != nil {
		return err
	}

	from := state.parcel.Status()
	if err = h.lifecycle.MarkMissing(state.parcel, l, state.credential, now); err != nil {
		return err
	}

	if err = state.save(ctx, uow); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(parcel.Missing.String()).Inc()
	recordTransition(ctx, h.collab, state, from)
	h.collab.record(ctx, audit.LockerFlagged, audit.Warning, map[string]any{
		"locker_id":   l.ID(),
		"status":      l.Status().String(),
		"parcel_id":   command.ParcelID().String(),
		"reported_by": command.ReportedBy(),
		"reason":      "parcel missing",
	})

	if h.adminContact == "" {
		h.collab.Logger.WarnContext(ctx, "no admin contact configured, missing parcel alert not sent",
			"parcel_id", command.ParcelID().String())
		return nil
	}
	h.collab.notify(ctx, h.adminContact, ports.AdminMissingAlert, command.ParcelID(), map[string]string{
		"parcel_id":    command.ParcelID().String(),
		"locker_id":    strconv.Itoa(l.ID()),
		"locker_label": l.Label(),
		"reported_by":  command.ReportedBy(),
		"previous":     from.String(),
	})
	return nil
}
