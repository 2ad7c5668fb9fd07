package commands

import (
	"context"
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

// RegenerationResult tells the caller when the new secret expires. The secret
// itself only goes to the recipient's contact address.
type RegenerationResult struct {
	Expiry   time.Time
	Notified bool
}

// RequestPinRegenerationCommandHandler re-issues a PIN when the claimed
// identifier matches and the daily cap allows it. A mismatch is returned as the
// same not-found error an unknown parcel produces.
type RequestPinRegenerationCommandHandler struct {
	uowFactory  UoWFactory
	credentials *credential.Manager
	collab      Collaborators
}

// NewRequestPinRegenerationCommandHandler creates a RequestPinRegenerationCommandHandler.
func NewRequestPinRegenerationCommandHandler(
	uowFactory UoWFactory,
	credentials *credential.Manager,
	collab Collaborators,
) RequestPinRegenerationCommandHandler {
	return RequestPinRegenerationCommandHandler{
		uowFactory:  uowFactory,
		credentials: credentials,
		collab:      collab,
	}
}

// Handle issues a new PIN to a recipient who proves their identifier.
func (h RequestPinRegenerationCommandHandler) Handle(
	ctx context.Context,
	command RequestPinRegenerationCommand,
) (RegenerationResult, error) {
	if err := command.Validate(); err != nil {
		return RegenerationResult{}, err
	}

	now := h.collab.Clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RegenerationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	state, err := loadParcelState(ctx, uow, command.ParcelID())
	if err != nil {
		return RegenerationResult{}, err
	}

	issued, err := h.credentials.RequestRegeneration(state.credential, state.parcel.Recipient(), command.ClaimedIdentifier(), now)
	if err != nil {
		return RegenerationResult{}, refuseRegeneration(ctx, h.collab, command.ParcelID(), "pin", err)
	}

	if err = uow.CredentialRepository().Update(ctx, state.credential); err != nil {
		return RegenerationResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RegenerationResult{}, err
	}

	metrics.CredentialIssuesTotal.WithLabelValues("regeneration").Inc()
	h.collab.record(ctx, audit.PINReissued, audit.Info, map[string]any{
		"parcel_id":        command.ParcelID().String(),
		"pin":              credential.MaskPIN(issued.PIN),
		"expiry":           issued.Expiry,
		"daily_generation": state.credential.DailyGenerationCount(),
	})

	notified := h.collab.notify(ctx, state.parcel.Recipient().String(), ports.PINReissued, command.ParcelID(), map[string]string{
		"parcel_id":  command.ParcelID().String(),
		"pin":        issued.PIN,
		"pin_expiry": issued.Expiry.Format(time.RFC3339),
	})
	return RegenerationResult{Expiry: issued.Expiry, Notified: notified}, nil
}

// refuseRegeneration audits a refused regeneration and shapes the error for the
// caller: identifier mismatches become not-found.
func refuseRegeneration(ctx context.Context, collab Collaborators, parcelID kernel.UUID, secret string, err error) error {
	reason := "error"
	switch {
	case errors.Is(err, credential.ErrIdentifierMismatch):
		reason = "identifier_mismatch"
	case errors.Is(err, credential.ErrRateLimited):
		reason = "rate_limited"
		metrics.RateLimitedTotal.Inc()
	case errors.Is(err, credential.ErrCredentialClosed):
		reason = "closed"
	}

	collab.record(ctx, audit.RegenerationRefused, audit.Warning, map[string]any{
		"parcel_id": parcelID.String(),
		"secret":    secret,
		"reason":    reason,
	})

	if reason == "identifier_mismatch" {
		return parcelNotFound(parcelID)
	}
	return err
}
