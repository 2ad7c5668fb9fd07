package locker

import (
	"fmt"
	"strings"

	"parcellocker/internal/pkg/errs"
)

// Status is the availability state of a locker.
//
//	Free ──reserve──> Occupied ──release──> Free
//	  │                  │
//	  │                  └─(admin / missing)─> OutOfService (sticky across release)
//	  └─(dispute)──> DisputedContents ──(admin)──> Free | OutOfService
type Status int

const (
	// UnknownStatus catches uninitialized values.
	UnknownStatus Status = iota
	Free
	Occupied
	OutOfService
	DisputedContents
)

func getStatusStrings() map[Status]string {
	//nolint:exhaustive // UnknownStatus is intentionally excluded as it's invalid
	return map[Status]string{
		Free:             "free",
		Occupied:         "occupied",
		OutOfService:     "out_of_service",
		DisputedContents: "disputed_contents",
	}
}

// ParseStatus converts a persisted or user supplied label to a Status.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, label := range getStatusStrings() {
		if label == needle {
			return status, nil
		}
	}
	return UnknownStatus, errs.NewValueIsInvalidErrorWithCause("locker status", fmt.Errorf("%q is not a known status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("locker status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsAdminTarget reports whether an administrator may set the status directly.
func (s Status) IsAdminTarget() bool {
	return s == Free || s == OutOfService
}
