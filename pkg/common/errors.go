package common

import "errors"

// Error taxonomy for the retrieval pipeline. Configuration problems abort a
// request before any external call; unavailable collaborators degrade their
// source to empty and the pipeline continues; a missing input artifact is
// fatal for the request.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrUnavailable   = errors.New("external service unavailable")
	ErrNotFound      = errors.New("not found")
)
