package client

import "errors"

var (
	// ErrUnavailable means the remote could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")

	// ErrRejected means the remote answered with a non-2xx status.
	ErrRejected = errors.New("request rejected")
)
