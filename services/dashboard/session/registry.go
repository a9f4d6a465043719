// Package session scopes uploaded tables to a dashboard session. The tool
// is single-user, so most requests ride the default session; explicit
// sessions exist so a fresh browser tab can start clean.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/dataset"
)

// DefaultID is the session used when a request names none.
const DefaultID = "default"

// ErrNotFound is returned for session IDs that were never created.
var ErrNotFound = errors.New("session not found")

// Session owns one in-memory store plus the content keys of its current
// uploads, so a replacement upload can evict the superseded parse.
type Session struct {
	ID string

	mu              sync.Mutex
	store           *dataset.Store
	stationsKey     string
	measurementsKey string
}

// Store exposes the session's table store.
func (s *Session) Store() *dataset.Store {
	return s.store
}

// SetStationsLoaded records a successful station upload and returns the
// content key it replaced, empty when nothing was superseded.
func (s *Session) SetStationsLoaded(key string) (replaced string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced = s.stationsKey
	s.stationsKey = key
	if replaced == key {
		return ""
	}
	return replaced
}

// SetMeasurementsLoaded is the narrow result counterpart of
// SetStationsLoaded.
func (s *Session) SetMeasurementsLoaded(key string) (replaced string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced = s.measurementsKey
	s.measurementsKey = key
	if replaced == key {
		return ""
	}
	return replaced
}

// Ready reports whether both datasets have been uploaded.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stationsKey != "" && s.measurementsKey != ""
}

// Registry tracks live sessions by ID.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create opens a new session with a fresh store and returns it.
func (r *Registry) Create() (*Session, error) {
	return r.create(uuid.NewString())
}

// Get returns the session for id, lazily creating the default session.
func (r *Registry) Get(id string) (*Session, error) {
	if id == "" {
		id = DefaultID
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	if id == DefaultID {
		return r.create(DefaultID)
	}
	return nil, ErrNotFound
}

// Close releases every session store.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.store.Close()
	}
	r.sessions = make(map[string]*Session)
}

func (r *Registry) create(id string) (*Session, error) {
	store, err := dataset.NewStore()
	if err != nil {
		return nil, err
	}
	s := &Session{ID: id, store: store}

	r.mu.Lock()
	// Another request may have created the same ID concurrently.
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		store.Close()
		return existing, nil
	}
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}
