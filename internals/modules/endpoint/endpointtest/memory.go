// Package endpointtest provides an in-memory endpoint.Store for tests.
package endpointtest

import (
	"context"
	"sort"
	"sync"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/pkg/apperror"
)

type Store struct {
	mu        sync.Mutex
	endpoints map[string]*endpoint.Endpoint
	saves     map[string]int

	// LoadErr and SaveErr, when set, are returned by every load or save.
	LoadErr error
	SaveErr error
	// LoadErrFor fails Load for single ids only.
	LoadErrFor map[string]error
}

func NewStore(eps ...*endpoint.Endpoint) *Store {
	s := &Store{
		endpoints: make(map[string]*endpoint.Endpoint),
		saves:     make(map[string]int),
	}
	for _, e := range eps {
		s.endpoints[e.ID] = e.Clone()
	}
	return s
}

func (s *Store) Load(_ context.Context, id string) (*endpoint.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if err := s.LoadErrFor[id]; err != nil {
		return nil, err
	}
	e, ok := s.endpoints[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "memory.endpoint.load", endpoint.ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *Store) LoadMultiple(_ context.Context, ids []string) ([]*endpoint.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	out := make([]*endpoint.Endpoint, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.endpoints[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (s *Store) LoadEnabled(_ context.Context) ([]*endpoint.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	var out []*endpoint.Endpoint
	for _, e := range s.endpoints {
		if e.Enabled {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save validates the whole entity first, as the PostgreSQL store does.
func (s *Store) Save(_ context.Context, e *endpoint.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.endpoints[e.ID] = e.Clone()
	s.saves[e.ID]++
	return nil
}

// SaveOutcome updates status and message of a stored endpoint. Like the
// PostgreSQL store it only checks the status.
func (s *Store) SaveOutcome(_ context.Context, id string, status endpoint.Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if !status.Valid() {
		return apperror.Invalid("memory.endpoint.save_outcome", "invalid endpoint status")
	}
	e, ok := s.endpoints[id]
	if !ok {
		return apperror.New(apperror.NotFound, "memory.endpoint.save_outcome", endpoint.ErrNotFound)
	}
	e.SetOutcome(status, message)
	s.saves[id]++
	return nil
}

// Get returns the stored copy without going through Load.
func (s *Store) Get(id string) *endpoint.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.endpoints[id]; ok {
		return e.Clone()
	}
	return nil
}

// Saves counts Save and SaveOutcome calls for id.
func (s *Store) Saves(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[id]
}
