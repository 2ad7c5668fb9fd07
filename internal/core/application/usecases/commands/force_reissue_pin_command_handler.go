package commands

import (
	"context"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

type ForceReissuePinCommandHandler struct {
	uowFactory  UoWFactory
	credentials *credential.Manager
	collab      Collaborators
}

// NewForceReissuePinCommandHandler creates a ForceReissuePinCommandHandler.
func NewForceReissuePinCommandHandler(
	uowFactory UoWFactory,
	credentials *credential.Manager,
	collab Collaborators,
) ForceReissuePinCommandHandler {
	return ForceReissuePinCommandHandler{
		uowFactory:  uowFactory,
		credentials: credentials,
		collab:      collab,
	}
}

// Handle issues a fresh PIN on an administrator's behalf, ignoring the daily cap.
func (h ForceReissuePinCommandHandler) Handle(ctx context.Context, command ForceReissuePinCommand) (RegenerationResult, error) {
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

	issued, err := h.credentials.ForceReissue(state.credential, now)
	if err != nil {
		return RegenerationResult{}, err
	}

	if err = uow.CredentialRepository().Update(ctx, state.credential); err != nil {
		return RegenerationResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RegenerationResult{}, err
	}

	metrics.CredentialIssuesTotal.WithLabelValues("force_reissue").Inc()
	h.collab.record(ctx, audit.PINForceReissued, audit.Warning, map[string]any{
		"parcel_id": command.ParcelID().String(),
		"admin":     command.Admin(),
		"pin":       credential.MaskPIN(issued.PIN),
		"expiry":    issued.Expiry,
	})

	notified := h.collab.notify(ctx, state.parcel.Recipient().String(), ports.PINReissued, command.ParcelID(), map[string]string{
		"parcel_id":  command.ParcelID().String(),
		"pin":        issued.PIN,
		"pin_expiry": issued.Expiry.Format(time.RFC3339),
	})
	return RegenerationResult{Expiry: issued.Expiry, Notified: notified}, nil
}
