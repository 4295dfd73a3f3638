package dashboard

import (
	"fmt"
	"sync"
)

// Status is the lifecycle stage of a fetch slot.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON and YAML.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusIdle, StatusLoading, StatusReady, StatusFailed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// FetchState is the observable state of one remote resource. Data is only
// meaningful when HasData is true, which happens in StatusReady.
type FetchState[T any] struct {
	Status  Status
	Data    T
	HasData bool
}

// Slot owns the FetchState of one resource. Every Begin supersedes earlier
// requests: only the completion carrying the latest sequence number may
// change state, and nothing changes after Close.
type Slot[T any] struct {
	name string

	mu       sync.Mutex
	seq      uint64
	state    FetchState[T]
	retained T
	kept     bool
	closed   bool
}

// NewSlot creates an idle slot whose retained value starts as placeholder.
func NewSlot[T any](name string, placeholder T) *Slot[T] {
	return &Slot[T]{name: name, retained: placeholder}
}

// Name identifies the slot in logs and metrics.
func (s *Slot[T]) Name() string {
	return s.name
}

// Begin moves the slot to loading and returns the sequence number the
// completion must present. ok is false once the slot is closed.
func (s *Slot[T]) Begin() (seq uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.seq++
	var zero T
	s.state = FetchState[T]{Status: StatusLoading, Data: zero}
	return s.seq, true
}

// Resolve stores data if seq is still current. It reports whether state changed.
func (s *Slot[T]) Resolve(seq uint64, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return false
	}
	s.state = FetchState[T]{Status: StatusReady, Data: data, HasData: true}
	s.retained = data
	s.kept = true
	return true
}

// Fail marks the slot failed if seq is still current. The last good value
// stays retained for display.
func (s *Slot[T]) Fail(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return false
	}
	var zero T
	s.state = FetchState[T]{Status: StatusFailed, Data: zero}
	return true
}

// State returns the current FetchState.
func (s *Slot[T]) State() FetchState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Retained returns the most recent ready value, or the placeholder when no
// fetch has succeeded yet. ok reports which of the two it is.
func (s *Slot[T]) Retained() (data T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retained, s.kept
}

// Close makes every later transition a no-op.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
