// Package backend contains interfaces and implementations to store and
// retrieve data from the odb
package backend

import (
	"errors"

	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/ginternals/object"
)

// Backend represents an object that can store and retrieve data
// from and to the odb. References and packfiles are out of scope for
// this core: a Backend only ever deals in loose objects.
type Backend interface {
	// Close frees the resources
	Close() error

	// Init initializes a repository
	Init() error

	// Object returns the object that has given oid
	Object(ginternals.Oid) (*object.Object, error)
	// HasObject returns whether an object exists in the odb
	HasObject(ginternals.Oid) (bool, error)
	// WriteObject adds an object to the odb. Writing an object that
	// already exists is a no-op and returns no error (content-addressed
	// idempotence).
	WriteObject(*object.Object) (ginternals.Oid, error)
	// WalkLooseObjectIDs runs the provided method on all the loose ids
	WalkLooseObjectIDs(f OidWalkFunc) error
}

// OidWalkFunc represents a function that will be applied on all oids
// found by a Walk* method
type OidWalkFunc = func(oid ginternals.Oid) error

// WalkStop is a fake error used to tell a Walk* method to stop
var WalkStop = errors.New("stop walking") //nolint // the linter expects all errors to start with Err, but since here we're faking an error we don't want that
