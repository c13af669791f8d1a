package notifications

import "errors"

var (
	// ErrUnknownTemplate is returned by Resolve and Build for a key absent
	// from the registry. Surfaced to the caller, never retried.
	ErrUnknownTemplate = errors.New("notifications: unknown template")

	// ErrRecordNotFound is returned when a delivery record does not exist
	// for the given recipient.
	ErrRecordNotFound = errors.New("notifications: record not found")

	// ErrInvalidRecipientSpec is returned when a recipient spec selects no
	// resolution strategy.
	ErrInvalidRecipientSpec = errors.New("notifications: invalid recipient spec")

	ErrStorageNil   = errors.New("notifications: storage is nil")
	ErrDirectoryNil = errors.New("notifications: directory is nil")
	ErrEnqueuerNil  = errors.New("notifications: enqueuer is nil")
)
