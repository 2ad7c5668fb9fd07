package credential

import (
	"errors"
	"fmt"
	"time"

	"parcellocker/internal/pkg/errs"
)

const (
	MinPINLength    = 4
	MaxPINLength    = 12
	MinIterations   = 100_000
	MinKeyLength    = 32
	MinSaltLength   = 16
	DefaultPINTTL   = 24 * time.Hour
	DefaultTokenTTL = 72 * time.Hour
)

// Policy holds the tunable credential parameters. All values are read-only after
// the Manager is built.
type Policy struct {
	PINLength           int
	Iterations          int
	KeyLength           int
	SaltLength          int
	PINTTL              time.Duration
	TokenTTL            time.Duration
	MaxDailyGenerations int
	// Calendar decides where a day starts for the daily generation counter.
	Calendar *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		PINLength:           6,
		Iterations:          MinIterations,
		KeyLength:           MinKeyLength,
		SaltLength:          MinSaltLength,
		PINTTL:              DefaultPINTTL,
		TokenTTL:            DefaultTokenTTL,
		MaxDailyGenerations: 3,
		Calendar:            time.UTC,
	}
}

func (p Policy) Validate() error {
	var errList []error
	if p.PINLength < MinPINLength || p.PINLength > MaxPINLength {
		errList = append(errList, errs.NewValueIsOutOfRangeError("pin length", p.PINLength, MinPINLength, MaxPINLength))
	}
	if p.Iterations < MinIterations {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("pin iterations",
			fmt.Errorf("%d is below the minimum of %d", p.Iterations, MinIterations)))
	}
	if p.KeyLength < MinKeyLength {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("pin key length",
			fmt.Errorf("%d is below the minimum of %d", p.KeyLength, MinKeyLength)))
	}
	if p.SaltLength < MinSaltLength {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("pin salt length",
			fmt.Errorf("%d is below the minimum of %d", p.SaltLength, MinSaltLength)))
	}
	if p.PINTTL <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("pin ttl"))
	}
	if p.TokenTTL <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("token ttl"))
	}
	if p.MaxDailyGenerations < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("max daily generations",
			fmt.Errorf("%d is not greater than 0", p.MaxDailyGenerations)))
	}
	if p.Calendar == nil {
		errList = append(errList, errs.NewValueIsRequiredError("calendar timezone"))
	}
	return errors.Join(errList...)
}

// day returns the calendar day of t under the policy timezone.
func (p Policy) day(t time.Time) string {
	return t.In(p.Calendar).Format(time.DateOnly)
}
