package engine

import "sync"

// Store is the single owner of engine state. Dispatch applies one event at a
// time; readers only ever see complete states.
type Store struct {
	mu       sync.Mutex
	state    State
	watchers []chan State
}

func NewStore() *Store {
	return &Store{}
}

// Dispatch applies ev and publishes the resulting state.
func (s *Store) Dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = reduce(s.state.clone(), ev)
	snapshot := s.state.clone()
	for _, ch := range s.watchers {
		publishLatest(ch, snapshot.clone())
	}
	return snapshot
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch returns a channel holding the most recent state. Slow readers skip
// intermediate states but always observe the latest one.
func (s *Store) Watch() <-chan State {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch
}

func publishLatest(ch chan State, st State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
