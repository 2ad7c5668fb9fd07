package commands

import (
	"context"
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/metrics"
)

type PickUpParcelResult struct {
	LockerID    int
	LockerLabel string
}

// PickUpParcelCommandHandler verifies the PIN and moves the parcel to picked_up,
// releasing its locker. A wrong or expired PIN returns
// credential.ErrCredentialInvalid and changes nothing; callers that need to tell
// the two apart read the PIN expiry through the GetParcel query first.
type PickUpParcelCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  *services.ParcelLifecycle
	collab     Collaborators
}

// NewPickUpParcelCommandHandler creates a PickUpParcelCommandHandler.
func NewPickUpParcelCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
) PickUpParcelCommandHandler {
	return PickUpParcelCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		collab:     collab,
	}
}

// Handle verifies the PIN and picks the parcel up. Every attempt on an existing
// parcel is audited once, including attempts refused before the PIN is checked.
func (h PickUpParcelCommandHandler) Handle(ctx context.Context, command PickUpParcelCommand) (PickUpParcelResult, error) {
	if err := command.Validate(); err != nil {
		return PickUpParcelResult{}, err
	}

	now := h.collab.Clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PickUpParcelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	state, err := loadParcelState(ctx, uow, command.ParcelID())
	if err != nil {
		return PickUpParcelResult{}, err
	}

	from := state.parcel.Status()
	l, err := state.lockerOrMissing(parcel.PickedUp)
	if err == nil {
		err = h.lifecycle.PickUp(state.parcel, l, state.credential, command.PIN(), now)
	}
	if err != nil {
		h.recordRefusal(ctx, command, state, now, err)
		return PickUpParcelResult{}, err
	}

	if err = state.save(ctx, uow); err != nil {
		return PickUpParcelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return PickUpParcelResult{}, err
	}

	metrics.VerificationsTotal.WithLabelValues("success").Inc()
	metrics.TransitionsTotal.WithLabelValues(parcel.PickedUp.String()).Inc()
	h.collab.record(ctx, audit.VerificationSucceeded, audit.Info, map[string]any{
		"parcel_id": command.ParcelID().String(),
		"pin":       credential.MaskPIN(command.PIN()),
	})
	recordTransition(ctx, h.collab, state, from)
	recordRelease(ctx, h.collab, l, command.ParcelID().String())

	return PickUpParcelResult{LockerID: l.ID(), LockerLabel: l.Label()}, nil
}

// recordRefusal audits a pickup attempt that changed nothing. A wrong or expired
// PIN and a parcel that cannot be picked up at all are both verification failures.
func (h PickUpParcelCommandHandler) recordRefusal(
	ctx context.Context,
	command PickUpParcelCommand,
	state parcelState,
	now time.Time,
	err error,
) {
	reason := "credential_invalid"
	if !errors.Is(err, credential.ErrCredentialInvalid) {
		reason = "not_collectable"
	}
	metrics.VerificationsTotal.WithLabelValues("failure").Inc()
	h.collab.record(ctx, audit.VerificationFailed, audit.Warning, map[string]any{
		"parcel_id":   command.ParcelID().String(),
		"pin":         credential.MaskPIN(command.PIN()),
		"pin_expired": state.credential.IsPINExpired(now),
		"status":      state.parcel.Status().String(),
		"reason":      reason,
	})
}

func recordTransition(ctx context.Context, collab Collaborators, state parcelState, from parcel.Status) {
	collab.record(ctx, audit.ParcelTransition, audit.Info, map[string]any{
		"parcel_id": state.parcel.ID().String(),
		"from":      from.String(),
		"to":        state.parcel.Status().ReportLabel(),
		"locker_id": lockerIDDetail(state.parcel),
	})
}

func recordRelease(ctx context.Context, collab Collaborators, l *locker.Locker, parcelID string) {
	collab.record(ctx, audit.LockerReleased, audit.Info, map[string]any{
		"locker_id": l.ID(),
		"status":    l.Status().String(),
		"parcel_id": parcelID,
	})
}
