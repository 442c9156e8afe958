package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrSaveInProgress is returned when a record is saved while a previous
	// save of the same record has not completed
	ErrSaveInProgress = errors.New("save already in progress")

	// ErrNotPersisted is returned for operations that need a server id
	ErrNotPersisted = errors.New("risk has not been persisted")

	// ErrUnauthorized is returned for missing or invalid bearer tokens
	ErrUnauthorized = errors.New("unauthorized")
)
