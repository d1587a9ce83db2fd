// Package session gates telemetry on an active play session.
package session

import "sync/atomic"

// State reports whether a play session is live. The zero value is idle.
type State struct {
	playing atomic.Bool
}

// Start marks the session as playing.
func (s *State) Start() {
	s.playing.Store(true)
}

// End marks the session as idle.
func (s *State) End() {
	s.playing.Store(false)
}

// Playing reports whether telemetry should be recorded.
func (s *State) Playing() bool {
	return s.playing.Load()
}
