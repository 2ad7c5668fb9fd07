package queries

import (
	"context"

	"parcellocker/internal/core/ports"
)

type ListLockersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewListLockersQueryHandler creates a ListLockersQueryHandler.
func NewListLockersQueryHandler(uowFactory ports.UnitOfWorkFactory) ListLockersQueryHandler {
	return ListLockersQueryHandler{uowFactory: uowFactory}
}

// Handle returns every locker ordered by identifier.
func (h ListLockersQueryHandler) Handle(ctx context.Context, query ListLockersQuery) ([]ListLockersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	lockers, err := uow.LockerRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]ListLockersQueryResponse, 0, len(lockers))
	for _, l := range lockers {
		response = append(response, ListLockersQueryResponse{
			ID:     l.ID(),
			Label:  l.Label(),
			Size:   l.Size().String(),
			Status: l.Status().String(),
		})
	}
	return response, nil
}
