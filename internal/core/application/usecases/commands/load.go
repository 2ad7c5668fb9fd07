package commands

import (
	"context"
	"errors"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/pkg/errs"
)

// parcelNotFound is the one shape of "no such parcel" handed to callers. A wrong
// recipient identifier yields exactly the same error as a missing record.
func parcelNotFound(id kernel.UUID) error {
	return errs.NewObjectNotFoundError("parcel", id)
}

// parcelState is a parcel with its locker and credential, loaded for a
// transition. The parcel row is locked first, then the locker row.
type parcelState struct {
	parcel     *parcel.Parcel
	locker     *locker.Locker
	credential *credential.Credential
}

func loadParcelState(ctx context.Context, uow UoW, id kernel.UUID) (parcelState, error) {
	p, err := uow.ParcelRepository().GetForUpdate(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return parcelState{}, parcelNotFound(id)
	}
	if err != nil {
		return parcelState{}, err
	}

	c, err := uow.CredentialRepository().Get(ctx, id)
	if err != nil {
		return parcelState{}, err
	}

	state := parcelState{parcel: p, credential: c}
	if lockerID := p.LockerID(); lockerID != nil {
		state.locker, err = uow.LockerRepository().GetForUpdate(ctx, *lockerID)
		if err != nil {
			return parcelState{}, err
		}
	}
	return state, nil
}

// lockerOrMissing is the locker of a loaded parcel, or nil when it was detached.
func (s parcelState) lockerOrMissing(attempted parcel.Status) (*locker.Locker, error) {
	if s.locker == nil {
		return nil, parcel.NewInvalidTransitionError(s.parcel.Status(), attempted, "parcel has no locker")
	}
	return s.locker, nil
}

func (s parcelState) save(ctx context.Context, uow UoW) error {
	if err := uow.ParcelRepository().Update(ctx, s.parcel); err != nil {
		return err
	}
	if err := uow.CredentialRepository().Update(ctx, s.credential); err != nil {
		return err
	}
	if s.locker != nil {
		return uow.LockerRepository().Update(ctx, s.locker)
	}
	return nil
}

func lockerIDDetail(p *parcel.Parcel) any {
	if id := p.LockerID(); id != nil {
		return *id
	}
	return nil
}
