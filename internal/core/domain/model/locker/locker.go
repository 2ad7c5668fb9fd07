package locker

import (
	"errors"
	"fmt"
	"strings"

	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var (
	// ErrNotAvailable means no free locker of a compatible size exists. It is an
	// expected outcome, not a fault; callers decide whether to retry.
	ErrNotAvailable = errors.New("no compatible locker available")

	ErrLockerIsNotFree     = errors.New("locker is not free")
	ErrLockerIsNotOccupied = errors.New("locker is not occupied")
	// ErrLockerReoccupied is returned when a dispute targets a locker that already
	// holds another parcel.
	ErrLockerReoccupied = errors.New("locker has been re-occupied")
	// ErrLockerInUse guards the admin override: a locker referenced by a parcel in a
	// non-terminal state cannot be forced free.
	ErrLockerInUse = errors.New("locker is referenced by an active parcel")
	// ErrStatusNotAllowed is returned when an admin targets a status other than free or out_of_service.
	ErrStatusNotAllowed = errors.New("status cannot be set directly")

	ErrLockerIsNotConstructed = errors.New("Locker must be created via NewLocker or RestoreLocker")
)

// Locker is a sized, uniquely numbered storage compartment holding at most one
// active parcel. Lockers are provisioned once and never destroyed; only
// reservation, release and administrative overrides change their status.
type Locker struct {
	id     int
	label  string
	size   SizeClass
	status Status

	guard guard.ConstructorGuard
}

// NewLocker provisions a free locker. Identifiers are positive and define the
// allocation order (lowest first).
func NewLocker(id int, label string, size SizeClass) (*Locker, error) {
	return RestoreLocker(id, label, size, Free)
}

// RestoreLocker rebuilds a locker from persistence.
func RestoreLocker(id int, label string, size SizeClass, status Status) (*Locker, error) {
	l := &Locker{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		l.setID(id),
		l.setLabel(label),
		l.setSize(size),
		l.setStatus(status),
	); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Locker) Validate() error {
	if l == nil {
		return ErrLockerIsNotConstructed
	}
	return l.guard.Validate(ErrLockerIsNotConstructed)
}

func (l *Locker) ID() int {
	return l.id
}

func (l *Locker) Label() string {
	return l.label
}

func (l *Locker) Size() SizeClass {
	return l.size
}

func (l *Locker) Status() Status {
	return l.status
}

// CanHold reports whether the locker is free and large enough for requested.
func (l *Locker) CanHold(requested SizeClass) bool {
	return l.status == Free && l.size.Accommodates(requested)
}

// Occupy marks a free locker as holding a parcel.
func (l *Locker) Occupy() error {
	if l.status != Free {
		return fmt.Errorf("%w: locker %d is %s", ErrLockerIsNotFree, l.id, l.status)
	}
	l.status = Occupied
	return nil
}

// CheckRelease validates Release without applying it.
func (l *Locker) CheckRelease() error {
	if l.status != Occupied && l.status != OutOfService {
		return fmt.Errorf("%w: locker %d is %s", ErrLockerIsNotOccupied, l.id, l.status)
	}
	return nil
}

// Release returns an occupied locker to the pool. A locker flagged OutOfService
// while occupied stays OutOfService.
func (l *Locker) Release() error {
	if err := l.CheckRelease(); err != nil {
		return err
	}
	if l.status == Occupied {
		l.status = Free
	}
	return nil
}

// TakeOutOfService flags the locker for inspection regardless of its current status.
func (l *Locker) TakeOutOfService() {
	l.status = OutOfService
}

// CheckFlagDisputed validates FlagDisputed without applying it. A locker already
// holding another parcel cannot be flagged.
func (l *Locker) CheckFlagDisputed() error {
	switch l.status {
	case Free, DisputedContents, OutOfService:
		return nil
	default:
		return fmt.Errorf("%w: locker %d is %s", ErrLockerReoccupied, l.id, l.status)
	}
}

// FlagDisputed marks the contents of a released locker as disputed. OutOfService
// is sticky and left untouched.
func (l *Locker) FlagDisputed() error {
	if err := l.CheckFlagDisputed(); err != nil {
		return err
	}
	if l.status != OutOfService {
		l.status = DisputedContents
	}
	return nil
}

// OverrideStatus applies an administrative status change. Only Free and
// OutOfService are valid targets, and Free is refused while an active parcel
// still references the locker.
func (l *Locker) OverrideStatus(target Status, referencedByActiveParcel bool) error {
	if !target.IsAdminTarget() {
		return fmt.Errorf("%w: %s", ErrStatusNotAllowed, target)
	}
	if target == Free && referencedByActiveParcel {
		return fmt.Errorf("%w: locker %d", ErrLockerInUse, l.id)
	}
	l.status = target
	return nil
}

func (l *Locker) setID(id int) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("locker id", fmt.Errorf("%d is not greater than 0", id))
	}
	l.id = id
	return nil
}

func (l *Locker) setLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return errs.NewValueIsRequiredError("locker label")
	}
	l.label = label
	return nil
}

func (l *Locker) setSize(size SizeClass) error {
	if err := size.Validate(); err != nil {
		return err
	}
	l.size = size
	return nil
}

func (l *Locker) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	l.status = status
	return nil
}
