package commands

import (
	"context"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/locker"
)

// ProvisionLockerCommandHandler persists a new locker in status free.
type ProvisionLockerCommandHandler struct {
	uowFactory UoWFactory
	collab     Collaborators
}

// NewProvisionLockerCommandHandler creates a ProvisionLockerCommandHandler.
func NewProvisionLockerCommandHandler(uowFactory UoWFactory, collab Collaborators) ProvisionLockerCommandHandler {
	return ProvisionLockerCommandHandler{
		uowFactory: uowFactory,
		collab:     collab,
	}
}

// Handle adds a free locker.
func (h ProvisionLockerCommandHandler) Handle(ctx context.Context, command ProvisionLockerCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	l, err := locker.NewLocker(command.ID(), command.Label(), command.Size())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.LockerRepository().Add(ctx, l); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.collab.record(ctx, audit.LockerProvisioned, audit.Info, map[string]any{
		"locker_id": l.ID(),
		"label":     l.Label(),
		"size":      l.Size().String(),
	})
	return nil
}
