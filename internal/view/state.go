package view

import (
	"sync"

	"github.com/existflow/pmdesk/internal/api"
)

// viewState serializes access to a controller's fields. Controllers are
// read by the UI event loop while loads and mutations run on other
// goroutines, so every field access goes through mu. Operations open a
// generation before touching the network and commit results only while
// that generation is still current; a superseded result is dropped
// instead of overwriting fresher state.
type viewState struct {
	mu     sync.Mutex
	gen    int
	phase  Phase
	errMsg string
}

// begin opens a new generation for an operation entering phase p
func (s *viewState) begin(p Phase) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.phase = p
	return s.gen
}

// snapshot returns the current generation without opening a new one.
// Used by follow-up fetches that ride on an already-open operation.
func (s *viewState) snapshot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// commit applies a successful result under the lock, unless a newer
// operation has superseded gen
func (s *viewState) commit(gen int, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	apply()
	s.phase = Loaded
	s.errMsg = ""
}

// fail records the error for display, unless a newer operation has
// superseded gen. Returns err either way.
func (s *viewState) fail(gen int, err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.phase = Errored
		s.errMsg = api.Detail(err, fallback)
	}
	return err
}

// Phase returns the view's lifecycle state
func (s *viewState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the message shown when the view is Errored
func (s *viewState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
