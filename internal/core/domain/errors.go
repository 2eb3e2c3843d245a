package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCollection indicates a collection with no configured
	// pipeline.
	ErrUnknownCollection = errors.New("unknown collection")

	// Fetch errors. A fetch failure aborts the run with no side
	// effects anywhere.

	// ErrEmptyDataset indicates the source returned zero rows.
	ErrEmptyDataset = errors.New("source returned empty dataset")

	// ErrSourceError indicates the source answered with an explicit
	// error envelope even though the transport call succeeded.
	ErrSourceError = errors.New("source reported error")

	// ErrMalformedResponse indicates the response body was neither a
	// row array nor a recognised envelope.
	ErrMalformedResponse = errors.New("malformed source response")

	// Review workflow errors.

	// ErrSyncInProgress indicates an analyze-or-commit cycle is
	// already in flight for the collection.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrInvalidState indicates the requested action is not allowed
	// from the current review state.
	ErrInvalidState = errors.New("invalid review state for action")

	// ErrNoPendingChanges indicates confirm was requested with zero
	// new or updated records.
	ErrNoPendingChanges = errors.New("no pending changes to commit")
)
