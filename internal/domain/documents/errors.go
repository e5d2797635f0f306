package documents

import "errors"

// Error taxonomy for the intake pipeline. All terminal errors abort the
// attempt; ErrStorageSign is the only display-time degradation.
var (
	// ErrUnauthenticated indicates no actor identity was available before any I/O.
	ErrUnauthenticated = errors.New("unauthenticated: no actor identity")

	// ErrStorageUpload indicates the raw file could not be durably stored.
	// No database record may exist for this attempt.
	ErrStorageUpload = errors.New("storage upload failed")

	// ErrStorageSign indicates a signed URL could not be issued. Retryable on
	// the next request; the document row itself is untouched.
	ErrStorageSign = errors.New("storage sign failed")

	// ErrPersistence indicates the insert/update failed. The uploaded blob is
	// retained as a recoverable orphan; there is no compensating delete.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
)
