package commands

import (
	"context"
	"errors"
	"time"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
)

// RedeemGenerationTokenResult carries the plaintext PIN. It is shown once to the
// token holder and also sent to the recipient.
type RedeemGenerationTokenResult struct {
	PIN    string
	Expiry time.Time
}

// RedeemGenerationTokenCommandHandler issues a PIN for a valid, unexpired token.
// Any token problem is credential.ErrCredentialInvalid.
type RedeemGenerationTokenCommandHandler struct {
	uowFactory  UoWFactory
	credentials *credential.Manager
	collab      Collaborators
}

// NewRedeemGenerationTokenCommandHandler creates a RedeemGenerationTokenCommandHandler.
func NewRedeemGenerationTokenCommandHandler(
	uowFactory UoWFactory,
	credentials *credential.Manager,
	collab Collaborators,
) RedeemGenerationTokenCommandHandler {
	return RedeemGenerationTokenCommandHandler{
		uowFactory:  uowFactory,
		credentials: credentials,
		collab:      collab,
	}
}

// Handle exchanges a valid generation token for a fresh PIN.
func (h RedeemGenerationTokenCommandHandler) Handle(
	ctx context.Context,
	command RedeemGenerationTokenCommand,
) (RedeemGenerationTokenResult, error) {
	if err := command.Validate(); err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	now := h.collab.Clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	state, err := loadParcelState(ctx, uow, command.ParcelID())
	if err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	issued, err := h.credentials.RedeemGenerationToken(state.credential, command.Token(), now)
	if errors.Is(err, credential.ErrCredentialInvalid) {
		metrics.VerificationsTotal.WithLabelValues("failure").Inc()
		h.collab.record(ctx, audit.VerificationFailed, audit.Warning, map[string]any{
			"parcel_id": command.ParcelID().String(),
			"secret":    "token",
		})
		return RedeemGenerationTokenResult{}, err
	}
	if err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	if err = uow.CredentialRepository().Update(ctx, state.credential); err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RedeemGenerationTokenResult{}, err
	}

	metrics.CredentialIssuesTotal.WithLabelValues("token_redeemed").Inc()
	h.collab.record(ctx, audit.TokenRedeemed, audit.Info, map[string]any{
		"parcel_id": command.ParcelID().String(),
		"pin":       credential.MaskPIN(issued.PIN),
		"expiry":    issued.Expiry,
	})

	h.collab.notify(ctx, state.parcel.Recipient().String(), ports.PINIssued, command.ParcelID(), map[string]string{
		"parcel_id":  command.ParcelID().String(),
		"pin":        issued.PIN,
		"pin_expiry": issued.Expiry.Format(time.RFC3339),
	})
	return RedeemGenerationTokenResult{PIN: issued.PIN, Expiry: issued.Expiry}, nil
}
