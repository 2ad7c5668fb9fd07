package queries

import (
	"context"
	"errors"

	"parcellocker/internal/core/ports"
	"parcellocker/internal/pkg/clock"
	"parcellocker/internal/pkg/errs"
)

// GetParcelQueryHandler assembles the parcel read model from the parcel, its
// credential and its locker.
type GetParcelQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      clock.Clock
}

// NewGetParcelQueryHandler creates a GetParcelQueryHandler.
func NewGetParcelQueryHandler(uowFactory ports.UnitOfWorkFactory, clk clock.Clock) GetParcelQueryHandler {
	return GetParcelQueryHandler{uowFactory: uowFactory, clock: clk}
}

// Handle returns the parcel view, or not found.
func (h GetParcelQueryHandler) Handle(ctx context.Context, query GetParcelQuery) (GetParcelQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetParcelQueryResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GetParcelQueryResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.ParcelRepository().Get(ctx, query.ParcelID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return GetParcelQueryResponse{}, errs.NewObjectNotFoundError("parcel", query.ParcelID())
	}
	if err != nil {
		return GetParcelQueryResponse{}, err
	}

	c, err := uow.CredentialRepository().Get(ctx, query.ParcelID())
	if err != nil {
		return GetParcelQueryResponse{}, err
	}

	response := GetParcelQueryResponse{
		ID:              p.ID(),
		Status:          p.Status().ReportLabel(),
		Size:            p.Size().String(),
		LockerID:        p.LockerID(),
		DepositedAt:     p.DepositedAt(),
		PickedUpAt:      p.PickedUpAt(),
		ReminderSentAt:  p.ReminderSentAt(),
		CredentialState: c.State().String(),
		PINExpiry:       c.PINExpiry(),
		PINExpired:      c.IsPINExpired(h.clock.Now()),
		TokenExpiry:     c.TokenExpiry(),
	}

	if lockerID := p.LockerID(); lockerID != nil {
		l, lockerErr := uow.LockerRepository().Get(ctx, *lockerID)
		if lockerErr != nil {
			return GetParcelQueryResponse{}, lockerErr
		}
		response.LockerLabel = l.Label()
	}

	return response, nil
}
