package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration reports malformed construction input.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidState reports an operation invoked outside its valid status.
	ErrInvalidState = errors.New("invalid state")
	// ErrClosed reports use of an engine after Close. It matches
	// ErrInvalidState under errors.Is.
	ErrClosed = fmt.Errorf("%w: engine closed", ErrInvalidState)
	// ErrUnknownChoice reports a button identifier outside A-D.
	ErrUnknownChoice = errors.New("unknown choice")
)
