package services

import (
	"sort"

	"parcellocker/internal/core/domain/model/locker"
)

// LockerPool selects and releases lockers. It does not load or lock anything
// itself: callers hand it candidates read inside a unit of work that holds the
// rows, so selection and occupation happen in one critical section.
//
// Business rules:
//   - a parcel fits its own size class or any larger one
//   - among fitting free lockers the lowest identifier wins
//   - releasing an out_of_service locker leaves it out_of_service
type LockerPool struct{}

func NewLockerPool() LockerPool {
	return LockerPool{}
}

// Select returns the lowest-identifier locker that can hold requested, or
// locker.ErrNotAvailable.
func (LockerPool) Select(requested locker.SizeClass, candidates []*locker.Locker) (*locker.Locker, error) {
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	fitting := make([]*locker.Locker, 0, len(candidates))
	for _, l := range candidates {
		if l != nil && l.Validate() == nil && l.CanHold(requested) {
			fitting = append(fitting, l)
		}
	}
	if len(fitting) == 0 {
		return nil, locker.ErrNotAvailable
	}

	sort.Slice(fitting, func(i, j int) bool {
		return fitting[i].ID() < fitting[j].ID()
	})
	return fitting[0], nil
}

// Reserve selects a locker and marks it occupied.
func (p LockerPool) Reserve(requested locker.SizeClass, candidates []*locker.Locker) (*locker.Locker, error) {
	l, err := p.Select(requested, candidates)
	if err != nil {
		return nil, err
	}
	if err = l.Occupy(); err != nil {
		return nil, err
	}
	return l, nil
}

func (LockerPool) Release(l *locker.Locker) error {
	return l.Release()
}
