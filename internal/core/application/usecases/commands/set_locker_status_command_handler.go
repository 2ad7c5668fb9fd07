package commands

import (
	"context"

	"parcellocker/internal/core/domain/model/audit"
)

// SetLockerStatusCommandHandler applies an administrative status override. Forcing
// free is refused with locker.ErrLockerInUse while a deposited or disputed parcel
// still references the locker.
type SetLockerStatusCommandHandler struct {
	uowFactory UoWFactory
	collab     Collaborators
}

// NewSetLockerStatusCommandHandler creates a SetLockerStatusCommandHandler.
func NewSetLockerStatusCommandHandler(uowFactory UoWFactory, collab Collaborators) SetLockerStatusCommandHandler {
	return SetLockerStatusCommandHandler{
		uowFactory: uowFactory,
		collab:     collab,
	}
}

// Handle applies an administrative status override.
func (h SetLockerStatusCommandHandler) Handle(ctx context.Context, command SetLockerStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	l, err := uow.LockerRepository().GetForUpdate(ctx, command.LockerID())
	if err != nil {
		return err
	}

	inUse, err := uow.ParcelRepository().ExistsActiveForLocker(ctx, command.LockerID())
	if err != nil {
		return err
	}

	from := l.Status()
	if err = l.OverrideStatus(command.Target(), inUse); err != nil {
		h.collab.record(ctx, audit.LockerStatusOverride, audit.Warning, map[string]any{
			"locker_id": command.LockerID(),
			"from":      from.String(),
			"to":        command.Target().String(),
			"admin":     command.Admin(),
			"refused":   err.Error(),
		})
		return err
	}

	if err = uow.LockerRepository().Update(ctx, l); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.collab.record(ctx, audit.LockerStatusOverride, audit.Warning, map[string]any{
		"locker_id": command.LockerID(),
		"from":      from.String(),
		"to":        l.Status().String(),
		"admin":     command.Admin(),
	})
	return nil
}
