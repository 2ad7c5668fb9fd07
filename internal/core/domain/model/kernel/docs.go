// Package kernel provides the shared value objects of the parcel locker domain.
//
// The package includes:
//   - UUID: identifier value object for parcels and credential records
//   - Recipient: opaque contact address compared case-insensitively
//
// Values are immutable and validate themselves; zero values are rejected by Validate.
package kernel
