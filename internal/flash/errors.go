package flash

import "errors"

var (
	// ErrNothingSelected means the run had no job/résumé pair to hand off.
	ErrNothingSelected = errors.New("nothing selected")
	// ErrSessionPersist wraps a failed session write.
	ErrSessionPersist = errors.New("session could not be persisted")
	// ErrInProgress is reported when the user already has a run in flight.
	ErrInProgress = errors.New("flash already in progress")
)
