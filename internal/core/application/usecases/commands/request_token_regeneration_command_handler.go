package commands

import (
	"context"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

// RequestTokenRegenerationCommandHandler issues a new generation token under the
// same identifier check and daily cap as PIN regeneration.
type RequestTokenRegenerationCommandHandler struct {
	uowFactory  UoWFactory
	credentials *credential.Manager
	collab      Collaborators
}

// NewRequestTokenRegenerationCommandHandler creates a RequestTokenRegenerationCommandHandler.
func NewRequestTokenRegenerationCommandHandler(
	uowFactory UoWFactory,
	credentials *credential.Manager,
	collab Collaborators,
) RequestTokenRegenerationCommandHandler {
	return RequestTokenRegenerationCommandHandler{
		uowFactory:  uowFactory,
		credentials: credentials,
		collab:      collab,
	}
}

// Handle sends a new generation token to a recipient who proves their identifier.
func (h RequestTokenRegenerationCommandHandler) Handle(
	ctx context.Context,
	command RequestTokenRegenerationCommand,
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

	issued, err := h.credentials.RequestTokenRegeneration(state.credential, state.parcel.Recipient(), command.ClaimedIdentifier(), now)
	if err != nil {
		return RegenerationResult{}, refuseRegeneration(ctx, h.collab, command.ParcelID(), "token", err)
	}

	if err = uow.CredentialRepository().Update(ctx, state.credential); err != nil {
		return RegenerationResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RegenerationResult{}, err
	}

	metrics.CredentialIssuesTotal.WithLabelValues("token_regeneration").Inc()
	h.collab.record(ctx, audit.TokenIssued, audit.Info, map[string]any{
		"parcel_id":        command.ParcelID().String(),
		"expiry":           issued.Expiry,
		"daily_generation": state.credential.DailyGenerationCount(),
	})

	notified := h.collab.notify(ctx, state.parcel.Recipient().String(), ports.PINReissued, command.ParcelID(), map[string]string{
		"parcel_id":    command.ParcelID().String(),
		"token":        issued.Token,
		"token_expiry": issued.Expiry.Format(time.RFC3339),
	})
	return RegenerationResult{Expiry: issued.Expiry, Notified: notified}, nil
}
