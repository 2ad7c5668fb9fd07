package commands

import (
	"context"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/metrics"
)

// DisputePickupCommandHandler moves a picked up parcel to pickup_disputed within
// the dispute window and flags its former locker disputed_contents.
type DisputePickupCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  *services.ParcelLifecycle
	collab     Collaborators
}

// NewDisputePickupCommandHandler creates a DisputePickupCommandHandler.
func NewDisputePickupCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
) DisputePickupCommandHandler {
	return DisputePickupCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		collab:     collab,
	}
}

// Handle flags the locker of a recently picked up parcel as disputed.
func (h DisputePickupCommandHandler) Handle(ctx context.Context, command DisputePickupCommand) error {
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
	if !state.parcel.Recipient().Matches(command.ClaimedIdentifier()) {
		return parcelNotFound(command.ParcelID())
	}
	l, err := state.lockerOrMissing(parcel.PickupDisputed)
	if err != nil {
		return err
	}

	from := state.parcel.Status()
	if err = h.lifecycle.Dispute(state.parcel, l, now); err != nil {
		return err
	}

	if err = state.save(ctx, uow); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(parcel.PickupDisputed.String()).Inc()
	recordTransition(ctx, h.collab, state, from)
	h.collab.record(ctx, audit.LockerFlagged, audit.Warning, map[string]any{
		"locker_id": l.ID(),
		"status":    l.Status().String(),
		"parcel_id": command.ParcelID().String(),
		"reason":    "pickup disputed",
	})
	return nil
}
