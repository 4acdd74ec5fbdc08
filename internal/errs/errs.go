// Package errs defines the sentinel errors shared across Runway services.
// Services wrap these with fmt.Errorf("...: %w", ...); the API layer maps
// them to HTTP status codes with errors.Is.
package errs

import "errors"

var (
	// ErrUnauthorized means the actor's role does not permit the operation,
	// or the actor is not a member of the workspace at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the referenced workspace, sprint, task or other
	// entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the request was malformed or violated a domain
	// rule (e.g. a sprint created with no tasks).
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyLocked means Lock was called on a sprint that is already
	// locked. The first lock wins; no second ledger entry is written.
	ErrAlreadyLocked = errors.New("sprint already locked")

	// ErrNotLocked means Close was called on a sprint that has not been
	// locked. Locking is a strict precondition for closing.
	ErrNotLocked = errors.New("sprint not locked")

	// ErrCompleted means a mutation was attempted on a completed sprint.
	// Completed sprints are terminal and immutable.
	ErrCompleted = errors.New("sprint already completed")
)
