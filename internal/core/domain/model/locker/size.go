package locker

import (
	"fmt"
	"strings"

	"parcellocker/internal/pkg/errs"
)

// SizeClass is the ordered compartment size of a locker: Small < Medium < Large.
// A parcel may be placed in a locker of its own size class or any larger one,
// never a smaller one.
type SizeClass int

const (
	// UnknownSize catches uninitialized values.
	UnknownSize SizeClass = iota
	Small
	Medium
	Large
)

func getSizeStrings() map[SizeClass]string {
	//nolint:exhaustive // UnknownSize is intentionally excluded as it's invalid
	return map[SizeClass]string{
		Small:  "small",
		Medium: "medium",
		Large:  "large",
	}
}

// ParseSizeClass converts "small", "medium" or "large" (any case) to a SizeClass.
func ParseSizeClass(s string) (SizeClass, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for size, label := range getSizeStrings() {
		if label == needle {
			return size, nil
		}
	}
	return UnknownSize, errs.NewValueIsInvalidErrorWithCause("size class", fmt.Errorf("%q is not a known size class", s))
}

// Validate rejects UnknownSize and out-of-range values.
func (s SizeClass) Validate() error {
	if _, ok := getSizeStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("size class", fmt.Errorf("%d is not a valid size class", s))
	}
	return nil
}

func (s SizeClass) String() string {
	if str, ok := getSizeStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Accommodates reports whether a compartment of size s can hold a parcel of size
// requested. Substitution is allowed upward only.
func (s SizeClass) Accommodates(requested SizeClass) bool {
	return s.Validate() == nil && requested.Validate() == nil && s >= requested
}
