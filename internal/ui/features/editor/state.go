// Package editor exposes a workspace over HTTP: a JSON API for every
// editing operation, a datastar event stream and the index page.
package editor

import (
	"sync"

	"github.com/leapstack-labs/leapflow/internal/ui/notifier"
	"github.com/leapstack-labs/leapflow/internal/workspace"
)

// State serializes access to a workspace shared by HTTP handlers and the
// file watcher. Every successful operation pings the notifier.
type State struct {
	mu     sync.Mutex
	ws     *workspace.Workspace
	notify *notifier.Notifier

	last workspace.Event
	seq  uint64
}

// NewState wraps ws. Change events are forwarded to notify.
func NewState(ws *workspace.Workspace, notify *notifier.Notifier) *State {
	s := &State{ws: ws, notify: notify}
	ws.OnChange(func(ev workspace.Event) {
		// Listeners run inside Do, so the lock is already held.
		s.last = ev
		s.seq++
		notify.Broadcast()
	})
	return s
}

// Do runs fn with exclusive access to the workspace.
func (s *State) Do(fn func(ws *workspace.Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ws)
}

// LastEvent returns the most recent change and how many changes have
// happened so far.
func (s *State) LastEvent() (workspace.Event, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seq
}
