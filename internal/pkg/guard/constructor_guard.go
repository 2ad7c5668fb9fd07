// Package guard provides ConstructorGuard, a marker embedded in commands, queries
// and domain objects so that zero values built with a struct literal can be told
// apart from values produced by their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the owning value was built by its constructor.
//
// Example:
//
//	type DepositParcelCommand struct {
//	    size  locker.SizeClass
//	    guard guard.ConstructorGuard
//	}
//
//	func NewDepositParcelCommand(size locker.SizeClass) DepositParcelCommand {
//	    return DepositParcelCommand{size: size, guard: guard.NewConstructorGuard()}
//	}
//
//	func (c DepositParcelCommand) Validate() error {
//	    return c.guard.Validate(ErrDepositParcelCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
