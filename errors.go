package ecs

import "fmt"

// LockedModelError is returned when a structural mutation (insert, update,
// remove, delete) is attempted while the Model is locked by an in-progress
// query iteration.
type LockedModelError struct{}

func (e LockedModelError) Error() string {
	return "model is currently locked"
}

// OutOfMemoryError wraps an allocation failure from a growable structure
// (a Column, a Bucket's entity list, the EntityManager's freelist). It is
// the only error kind this package returns for a resource failure; the
// other errors it returns report misuse (a locked Model, an unknown Key, a
// duplicate registration). By the time it is returned, all core invariants
// have already been restored.
type OutOfMemoryError struct {
	cause error
}

func (e OutOfMemoryError) Error() string {
	if e.cause == nil {
		return "out of memory"
	}
	return fmt.Sprintf("out of memory: %v", e.cause)
}

func (e OutOfMemoryError) Unwrap() error { return e.cause }

// ComponentExistsError is returned when Extend is asked to register a
// (component, role) pair an entity already holds; with
// Config.DebugAssertions true, Extend panics with it instead.
type ComponentExistsError struct {
	Tag Tag
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component tag %d already exists", e.Tag)
}

// ComponentNotFoundError is returned when a Key or Tag refers to a
// component an entity does not carry.
type ComponentNotFoundError struct {
	Tag Tag
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component tag %d not found", e.Tag)
}

// PreconditionViolationError marks a programmer error: downcasting a Column
// to the wrong type, indexing an absent or void tag, or supplying a value
// whose type mismatches the tag's declared component type. In debug builds
// (Config.DebugAssertions == true) these abort via panic; see
// Config.DebugAssertions.
type PreconditionViolationError struct {
	Detail string
}

func (e PreconditionViolationError) Error() string {
	return fmt.Sprintf("precondition violation: %s", e.Detail)
}

// ShapeMismatchError is a PreconditionViolationError raised by
// Cursor/Bucket accessors when the requested tags are not all present in
// the current archetype.
type ShapeMismatchError struct {
	PreconditionViolationError
}

func newShapeMismatch(detail string) ShapeMismatchError {
	return ShapeMismatchError{PreconditionViolationError{Detail: detail}}
}

func newPreconditionViolation(detail string) PreconditionViolationError {
	return PreconditionViolationError{Detail: detail}
}
