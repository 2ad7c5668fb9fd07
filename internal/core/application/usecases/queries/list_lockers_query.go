package queries

import (
	"errors"

	"parcellocker/internal/pkg/guard"
)

var ErrListLockersQueryIsNotConstructed = errors.New(
	"ListLockersQuery must be created via NewListLockersQuery constructor",
)

// ListLockersQuery lists every locker with its size and status, ordered by id.
type ListLockersQuery struct {
	guard guard.ConstructorGuard
}

func NewListLockersQuery() ListLockersQuery {
	return ListLockersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListLockersQuery) Validate() error {
	return q.guard.Validate(ErrListLockersQueryIsNotConstructed)
}

type ListLockersQueryResponse struct {
	ID     int
	Label  string
	Size   string
	Status string
}
