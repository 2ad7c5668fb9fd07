package parcel

import (
	"fmt"
	"strings"

	"parcellocker/internal/pkg/errs"
)

// Status is the lifecycle state of a parcel.
//
//	Deposited ──┬──> PickedUp ──> PickupDisputed ──> Missing
//	            ├──> RetractedBySender
//	            ├──> Expired (reported as return_to_sender)
//	            └──> Missing
//
// Every edge is listed in getTransitions; anything else is an invalid transition.
type Status int

const (
	// UnknownStatus represents an invalid or undefined status.
	UnknownStatus Status = iota

	// Deposited is the initial status: the parcel sits in its locker awaiting pickup.
	Deposited

	// PickedUp means the recipient collected the parcel with a valid PIN.
	PickedUp

	// Expired means the parcel was not collected within the pickup window and is
	// returned to the sender.
	Expired

	// Missing means the parcel was reported missing and detached from its locker.
	Missing

	// PickupDisputed means the recipient disputed the contents shortly after pickup.
	PickupDisputed

	// RetractedBySender means the sender took the parcel back shortly after deposit.
	RetractedBySender
)

// returnToSenderLabel is the reporting name of Expired.
const returnToSenderLabel = "return_to_sender"

func getStatusStrings() map[Status]string {
	//nolint:exhaustive // UnknownStatus is intentionally excluded as it's invalid
	return map[Status]string{
		Deposited:         "deposited",
		PickedUp:          "picked_up",
		Expired:           "expired",
		Missing:           "missing",
		PickupDisputed:    "pickup_disputed",
		RetractedBySender: "retracted_by_sender",
	}
}

// getTransitions is the complete transition table.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // statuses without outgoing edges are omitted
	return map[Status][]Status{
		Deposited:      {PickedUp, RetractedBySender, Missing, Expired},
		PickedUp:       {PickupDisputed},
		PickupDisputed: {Missing},
	}
}

// ParseStatus converts a label to a Status. Both "expired" and "return_to_sender"
// resolve to Expired.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == returnToSenderLabel {
		return Expired, nil
	}
	for status, label := range getStatusStrings() {
		if label == needle {
			return status, nil
		}
	}
	return UnknownStatus, errs.NewValueIsInvalidErrorWithCause("parcel status", fmt.Errorf("%q is not a known status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ReportLabel is the name used in reports; it differs from String only for Expired.
func (s Status) ReportLabel() string {
	if s == Expired {
		return returnToSenderLabel
	}
	return s.String()
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range getTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target when the edge exists, or an *InvalidTransitionError.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, NewInvalidTransitionError(s, target, "transition not permitted")
	}
	return target, nil
}

// IsFinal reports whether no lifecycle transition leaves s.
func (s Status) IsFinal() bool {
	return s.Validate() == nil && len(getTransitions()[s]) == 0
}

// HoldsLocker reports whether a parcel in s still owns its locker, i.e. the locker
// must not be handed out or forced free.
func (s Status) HoldsLocker() bool {
	return s == Deposited || s == PickupDisputed
}
