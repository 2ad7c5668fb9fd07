package commands

import (
	"context"
	"strconv"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
	"parcellocker/internal/pkg/errs"
)

// SendRemindersCommandHandler reminds recipients of parcels deposited at least
// threshold ago. Each parcel is claimed (reminderSentAt = now) in its own short
// transaction and the notification is sent afterwards with no lock held, so a
// parcel is reminded at most once even when the send fails.
type SendRemindersCommandHandler struct {
	uowFactory UoWFactory
	threshold  time.Duration
	collab     Collaborators
}

// NewSendRemindersCommandHandler creates a SendRemindersCommandHandler.
func NewSendRemindersCommandHandler(
	uowFactory UoWFactory,
	threshold time.Duration,
	collab Collaborators,
) (SendRemindersCommandHandler, error) {
	if threshold <= 0 {
		return SendRemindersCommandHandler{}, errs.NewValueIsInvalidError("reminder threshold")
	}
	return SendRemindersCommandHandler{
		uowFactory: uowFactory,
		threshold:  threshold,
		collab:     collab,
	}, nil
}

// Handle reminds one batch of recipients whose parcels are due.
func (h SendRemindersCommandHandler) Handle(ctx context.Context, command SendRemindersCommand) (SweepReport, error) {
	if err := command.Validate(); err != nil {
		return SweepReport{}, err
	}

	now := h.collab.Clock.Now()
	ids, err := h.findDue(ctx, now.Add(-h.threshold), command.BatchSize())
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Found: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		claimed, claimErr := h.claim(ctx, id, h.collab.Clock.Now())
		if claimErr != nil {
			report.Failed++
			h.collab.Logger.ErrorContext(ctx, "failed to claim parcel for reminder",
				"parcel_id", id.String(),
				"error", claimErr,
			)
			continue
		}
		if claimed == nil {
			report.Skipped++
			continue
		}
		report.Claimed++

		// The claim is committed before the send, so a crash in between leaves
		// the parcel marked reminded without a delivery. Reminders are at most once.
		if h.remind(ctx, claimed) {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func (h SendRemindersCommandHandler) findDue(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.ParcelRepository().FindDueForReminder(ctx, cutoff, limit)
}

// claim marks the parcel reminded and returns it, or nil when it is no longer
// eligible (picked up, expired or claimed by another run).
func (h SendRemindersCommandHandler) claim(ctx context.Context, id kernel.UUID, now time.Time) (*parcel.Parcel, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.ParcelRepository().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.NeedsReminder(now, h.threshold) {
		return nil, nil
	}
	if err = p.MarkReminded(now); err != nil {
		return nil, err
	}

	if err = uow.ParcelRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (h SendRemindersCommandHandler) remind(ctx context.Context, p *parcel.Parcel) bool {
	data := map[string]string{
		"parcel_id":    p.ID().String(),
		"deposited_at": p.DepositedAt().Format(time.RFC3339),
	}
	if id := p.LockerID(); id != nil {
		data["locker_id"] = strconv.Itoa(*id)
	}

	if err := h.collab.Notifier.Send(ctx, p.Recipient().String(), ports.Reminder, data); err != nil {
		metrics.RemindersTotal.WithLabelValues("failed").Inc()
		h.collab.Logger.WarnContext(ctx, "reminder delivery failed",
			"parcel_id", p.ID().String(),
			"error", err,
		)
		h.collab.record(ctx, audit.ReminderFailed, audit.Warning, map[string]any{
			"parcel_id": p.ID().String(),
			"error":     err.Error(),
		})
		return false
	}

	metrics.RemindersTotal.WithLabelValues("sent").Inc()
	h.collab.record(ctx, audit.ReminderSent, audit.Info, map[string]any{
		"parcel_id": p.ID().String(),
	})
	return true
}
