package commands

import (
	"context"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/metrics"
)

// ExpireOverdueParcelsCommandHandler moves overdue deposited parcels to expired,
// one transaction per parcel. A failure on one parcel is logged and the batch
// continues.
type ExpireOverdueParcelsCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  *services.ParcelLifecycle
	collab     Collaborators
}

// NewExpireOverdueParcelsCommandHandler creates an ExpireOverdueParcelsCommandHandler.
func NewExpireOverdueParcelsCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
) ExpireOverdueParcelsCommandHandler {
	return ExpireOverdueParcelsCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		collab:     collab,
	}
}

// Handle expires one batch of overdue parcels.
func (h ExpireOverdueParcelsCommandHandler) Handle(ctx context.Context, command ExpireOverdueParcelsCommand) (SweepReport, error) {
	if err := command.Validate(); err != nil {
		return SweepReport{}, err
	}

	now := h.collab.Clock.Now()
	ids, err := h.findOverdue(ctx, now.Add(-h.lifecycle.Windows().MaxPickup), command.BatchSize())
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Found: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		expired, expireErr := h.expireOne(ctx, id, h.collab.Clock.Now())
		switch {
		case expireErr != nil:
			report.Failed++
			h.collab.Logger.ErrorContext(ctx, "failed to expire parcel",
				"parcel_id", id.String(),
				"error", expireErr,
			)
		case expired:
			report.Claimed++
			report.Succeeded++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

func (h ExpireOverdueParcelsCommandHandler) findOverdue(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.ParcelRepository().FindOverdue(ctx, cutoff, limit)
}

// expireOne reports false without error when the parcel changed since it was
// listed, e.g. it was picked up in the meantime.
func (h ExpireOverdueParcelsCommandHandler) expireOne(ctx context.Context, id kernel.UUID, now time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	state, err := loadParcelState(ctx, uow, id)
	if err != nil {
		return false, err
	}
	if !state.parcel.IsOverdue(now, h.lifecycle.Windows().MaxPickup) || state.locker == nil {
		return false, nil
	}

	from := state.parcel.Status()
	if err = h.lifecycle.Expire(state.parcel, state.locker, state.credential, now); err != nil {
		return false, err
	}

	if err = state.save(ctx, uow); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	metrics.ExpiredParcelsTotal.Inc()
	metrics.TransitionsTotal.WithLabelValues(parcel.Expired.String()).Inc()
	recordTransition(ctx, h.collab, state, from)
	recordRelease(ctx, h.collab, state.locker, id.String())
	return true, nil
}
