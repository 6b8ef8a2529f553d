package automation

import "errors"

// Sentinel errors for action resolution and dispatch.
var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrUnknownScript  = errors.New("unknown script")
	ErrInvalidDelay   = errors.New("invalid delay_ms")
	ErrInvalidScript  = errors.New("invalid script")
	ErrInvalidCommand = errors.New("invalid command")
	ErrQueueFull      = errors.New("action queue full")
)
