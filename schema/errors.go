package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration missing or invalid target scope, empty resolved target set, unresolved template token
	ErrConfiguration = errors.New("configuration error")
	// ErrState mutation after the schema is finalized, or accessor used before owning
	ErrState = errors.New("state error")
	// ErrType wrong constraint or value type
	ErrType = errors.New("type error")
	// ErrSchemaLock constraint shape mismatch detected while locking
	ErrSchemaLock = errors.New("schema lock error")
	// ErrDuplicateName name already used within a registry
	ErrDuplicateName = errors.New("duplicate name")
	// ErrNotFound named constraint, model, field or per model index not found
	ErrNotFound = errors.New("not found")
	// ErrValidation required value missing
	ErrValidation = errors.New("validation error")
)

// LockError constraint that failed its lock time shape check
type LockError struct {
	Constraint string
	Expected   int
	Got        int
}

func (e *LockError) Error() string {
	return fmt.Sprintf("%v: constraint %s expects %d attributes per member, got %d", ErrSchemaLock, e.Constraint, e.Expected, e.Got)
}

func (e *LockError) Is(target error) bool {
	return target == ErrSchemaLock
}
