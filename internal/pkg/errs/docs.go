// Package errs provides standardized error types for the parcel locker service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value breaks a domain rule
//   - ValueIsOutOfRangeError: a numeric setting is outside its accepted bounds
//   - ObjectNotFoundError: an object cannot be found, or must look as if it could not
//
// Each error type has a sentinel (e.g. ErrValueIsRequired), a struct carrying the
// details, constructors with and without cause, and an Unwrap method returning the
// sentinel so callers can classify errors with errors.Is.
package errs
