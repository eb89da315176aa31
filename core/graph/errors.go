package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrTypeMismatch  = errors.New("port types do not match")
	ErrUnknownPort   = errors.New("port is not registered")
	ErrDuplicatePort = errors.New("port name already in use")
	ErrCycleDetected = errors.New("feed-forward graph contains a cycle")
	ErrSelfConnect   = errors.New("outbound and inbound port belong to the same actor")

	// Lifecycle errors
	ErrFrozen    = errors.New("topology is frozen")
	ErrNotFrozen = errors.New("topology is not frozen")
)

// CycleError reports one offending cycle found during [Topology.Freeze].
// It unwraps to [ErrCycleDetected].
type CycleError struct {
	// Actors on the cycle, in edge order. The first actor is repeated at
	// the end to close the loop.
	Actors []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycleDetected, strings.Join(e.Actors, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }
