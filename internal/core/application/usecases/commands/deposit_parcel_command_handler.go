package commands

import (
	"context"
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

// DepositParcelResult describes where the parcel went. The PIN or token itself is
// only ever delivered to the recipient.
type DepositParcelResult struct {
	ParcelID    kernel.UUID
	LockerID    int
	LockerLabel string
	LockerSize  locker.SizeClass
	DepositedAt time.Time
	PINExpiry   *time.Time
	TokenExpiry *time.Time
	Notified    bool
}

// DepositParcelCommandHandler reserves the lowest-numbered free locker that fits,
// creates the parcel and its credential in one transaction, then notifies the
// recipient. locker.ErrNotAvailable is returned as is when nothing fits.
type DepositParcelCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  *services.ParcelLifecycle
	collab     Collaborators
}

// NewDepositParcelCommandHandler creates a DepositParcelCommandHandler.
func NewDepositParcelCommandHandler(
	uowFactory UoWFactory,
	lifecycle *services.ParcelLifecycle,
	collab Collaborators,
) DepositParcelCommandHandler {
	return DepositParcelCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		collab:     collab,
	}
}

// Handle reserves a locker, stores the parcel with its credential and tells the recipient.
func (h DepositParcelCommandHandler) Handle(ctx context.Context, command DepositParcelCommand) (DepositParcelResult, error) {
	if err := command.Validate(); err != nil {
		return DepositParcelResult{}, err
	}

	now := h.collab.Clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DepositParcelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	candidates, err := uow.LockerRepository().FindFreeFitting(ctx, command.Size(), 1)
	if err != nil {
		return DepositParcelResult{}, err
	}

	deposit, err := h.lifecycle.Deposit(kernel.NewUUID(), command.Size(), command.Recipient(), command.Mode(), candidates, now)
	if errors.Is(err, locker.ErrNotAvailable) {
		metrics.ReservationsTotal.WithLabelValues(command.Size().String(), "not_available").Inc()
		return DepositParcelResult{}, err
	}
	if err != nil {
		return DepositParcelResult{}, err
	}

	if err = uow.ParcelRepository().Add(ctx, deposit.Parcel); err != nil {
		return DepositParcelResult{}, err
	}
	if err = uow.CredentialRepository().Add(ctx, deposit.Credential); err != nil {
		return DepositParcelResult{}, err
	}
	if err = uow.LockerRepository().Update(ctx, deposit.Locker); err != nil {
		return DepositParcelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return DepositParcelResult{}, err
	}

	metrics.ReservationsTotal.WithLabelValues(command.Size().String(), "reserved").Inc()
	return h.announce(ctx, deposit), nil
}

func (h DepositParcelCommandHandler) announce(ctx context.Context, deposit services.Deposit) DepositParcelResult {
	p, l := deposit.Parcel, deposit.Locker
	result := DepositParcelResult{
		ParcelID:    p.ID(),
		LockerID:    l.ID(),
		LockerLabel: l.Label(),
		LockerSize:  l.Size(),
		DepositedAt: p.DepositedAt(),
	}

	h.collab.record(ctx, audit.LockerReserved, audit.Info, map[string]any{
		"locker_id":      l.ID(),
		"requested_size": p.Size().String(),
		"locker_size":    l.Size().String(),
		"parcel_id":      p.ID().String(),
	})
	h.collab.record(ctx, audit.ParcelDeposited, audit.Info, map[string]any{
		"parcel_id": p.ID().String(),
		"locker_id": l.ID(),
		"to":        p.Status().String(),
	})

	data := map[string]string{
		"parcel_id":    p.ID().String(),
		"locker_label": l.Label(),
	}
	switch {
	case deposit.PIN != nil:
		result.PINExpiry = &deposit.PIN.Expiry
		metrics.CredentialIssuesTotal.WithLabelValues("deposit").Inc()
		h.collab.record(ctx, audit.PINIssued, audit.Info, map[string]any{
			"parcel_id": p.ID().String(),
			"pin":       credential.MaskPIN(deposit.PIN.PIN),
			"expiry":    deposit.PIN.Expiry,
		})
		data["pin"] = deposit.PIN.PIN
		data["pin_expiry"] = deposit.PIN.Expiry.Format(time.RFC3339)
	case deposit.Token != nil:
		result.TokenExpiry = &deposit.Token.Expiry
		metrics.CredentialIssuesTotal.WithLabelValues("deposit_token").Inc()
		h.collab.record(ctx, audit.TokenIssued, audit.Info, map[string]any{
			"parcel_id": p.ID().String(),
			"expiry":    deposit.Token.Expiry,
		})
		data["token"] = deposit.Token.Token
		data["token_expiry"] = deposit.Token.Expiry.Format(time.RFC3339)
	}

	result.Notified = h.collab.notify(ctx, p.Recipient().String(), ports.DepositConfirmation, p.ID(), data)
	return result
}
