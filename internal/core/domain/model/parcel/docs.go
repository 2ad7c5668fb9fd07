// Package parcel contains the Parcel aggregate and its lifecycle state machine.
//
// A parcel is deposited into a locker, then either picked up by its recipient,
// retracted by the sender shortly after deposit, expired after the pickup window,
// or reported missing. A pickup may be disputed for a short time afterwards.
//
// Every transition is checked before any field changes; a refused transition
// returns an *InvalidTransitionError wrapping ErrInvalidTransition and leaves the
// parcel untouched.
package parcel
