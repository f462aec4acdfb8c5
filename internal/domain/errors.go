package domain

import "errors"

// ErrInvalidConfig wraps every timer configuration validation failure
var ErrInvalidConfig = errors.New("invalid timer configuration")

// ErrNoActiveSession is returned by commands that need a session.
// The text is shown to users as-is.
var ErrNoActiveSession = errors.New("No active session")
