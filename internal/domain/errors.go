package domain

import "errors"

// Sentinel errors for the journal engine. Handlers map these to HTTP statuses
// with errors.Is; everything else is treated as an internal error.
var (
	// ErrTradeNotFound - an operation referenced a nonexistent trade id
	ErrTradeNotFound = errors.New("trade not found")

	// ErrAccountNotFound - an explicit account reference did not resolve
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoAccountAvailable - plan creation could not resolve a default account
	ErrNoAccountAvailable = errors.New("no account available")

	// ErrNoteNotFound - a note operation referenced a nonexistent id
	ErrNoteNotFound = errors.New("note not found")

	// ErrInvalidStatus - a query or update used an unrecognized status token
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidDirection - an unrecognized trade direction token
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidTransition - an attempt to move a trade against the lifecycle graph
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation - a record failed an invariant check before persistence
	ErrValidation = errors.New("validation failed")
)
