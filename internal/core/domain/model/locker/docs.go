// Package locker models the storage compartments parcels are deposited into.
//
// The package includes:
//   - Locker: the aggregate holding identity, size class and availability status
//   - SizeClass: ordered compartment size with upward-only substitution
//   - Status: free, occupied, out_of_service and disputed_contents
//
// Key business rules:
//   - Only a free locker can be occupied
//   - Releasing an out_of_service locker leaves it out_of_service
//   - Administrators may only set free or out_of_service, and never free while an
//     active parcel still references the locker
package locker
