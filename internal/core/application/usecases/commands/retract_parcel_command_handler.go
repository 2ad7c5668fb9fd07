package commands

import (
	"context"

	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/metrics"
)

// RetractParcelCommandHandler moves a deposited parcel to retracted_by_sender
// inside the retraction window, revokes its credential and frees the locker.
type RetractParcelCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  *services.ParcelLifecycle
	collab     Collaborators
}

// NewRetractParcelCommandHandler creates a RetractParcelCommandHandler.
func NewRetractParcelCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
) RetractParcelCommandHandler {
	return RetractParcelCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		collab:     collab,
	}
}

// Handle returns the parcel to its sender within the retraction window.
func (h RetractParcelCommandHandler) Handle(ctx context.Context, command RetractParcelCommand) error {
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
	l, err := state.lockerOrMissing(parcel.RetractedBySender)
	if err != nil {
		return err
	}

	from := state.parcel.Status()
	if err = h.lifecycle.Retract(state.parcel, l, state.credential, now); err != nil {
		return err
	}

	if err = state.save(ctx, uow); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(parcel.RetractedBySender.String()).Inc()
	recordTransition(ctx, h.collab, state, from)
	recordRelease(ctx, h.collab, l, command.ParcelID().String())
	return nil
}
