package slicer

import "errors"

var (
	// ErrOwnerNotFound means the owner of an instance could not be resolved while
	// deriving its key. Instances are only created with a valid owner, so this is a
	// caller bug and is never retried.
	ErrOwnerNotFound = errors.New("slicer: instance owner not found")

	ErrInvalidInstance = errors.New("slicer: invalid instance")
	ErrClosed          = errors.New("slicer: scheduler closed")
)
