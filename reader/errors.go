package reader

import "errors"

// Failure taxonomy for a reading session.
var (
	// ErrAcquisition means screen capture or recognition failed. It aborts
	// the current session only.
	ErrAcquisition = errors.New("text acquisition failed")

	// ErrGeneration means the external speech engine failed. Fatal when it
	// hits the first chunk of a session, soft when it hits a prefetch.
	ErrGeneration = errors.New("audio generation failed")

	// ErrEmptyContent means recognition found nothing worth reading. It is
	// a clean no-op, not a failure the user needs to act on.
	ErrEmptyContent = errors.New("no readable content found")

	// ErrStalePage means the page never changed within the duplicate-page
	// retry window. Fatal for the session.
	ErrStalePage = errors.New("page did not change")

	// ErrNoSession means an operation needs an active session and there is
	// none.
	ErrNoSession = errors.New("no active reading session")

	// errStaleSession marks a result that arrived after its session was
	// invalidated. Never user-facing; the result is discarded silently.
	errStaleSession = errors.New("stale session result discarded")
)
