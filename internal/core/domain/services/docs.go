// Package services holds the domain services that coordinate lockers, parcels and
// credentials.
//
// The package includes:
//   - LockerPool: size-compatible, lowest-identifier locker selection and release
//   - ParcelLifecycle: guarded transitions that move a parcel, its locker and its
//     credential together
//
// Services are pure: they work on aggregates the caller loaded inside a unit of
// work and never touch persistence, clocks or notifications themselves.
package services
