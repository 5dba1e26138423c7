package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// SessionStore is an in-memory store.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.ReviewSession
	open     map[uuid.UUID]uuid.UUID // owner -> open session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.ReviewSession),
		open:     make(map[uuid.UUID]uuid.UUID),
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

func cloneSession(s *domain.ReviewSession) *domain.ReviewSession {
	c := *s
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return &c
}

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(_ context.Context, session *domain.ReviewSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	if session.IsOpen() {
		if _, ok := s.open[session.OwnerID]; ok {
			return store.ErrOpenSessionExists
		}
		s.open[session.OwnerID] = session.ID
	}
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// GetOpen implements store.SessionStore.GetOpen.
func (s *SessionStore) GetOpen(_ context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.open[ownerID]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return cloneSession(s.sessions[id]), nil
}

// Close implements store.SessionStore.Close.
func (s *SessionStore) Close(_ context.Context, id uuid.UUID, endedAt time.Time) (*domain.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	if session.IsOpen() {
		s.closeLocked(session, endedAt)
	}
	return cloneSession(session), nil
}

func (s *SessionStore) closeLocked(session *domain.ReviewSession, endedAt time.Time) {
	t := endedAt
	session.EndedAt = &t
	delete(s.open, session.OwnerID)
}

// AddCounts implements store.SessionStore.AddCounts.
func (s *SessionStore) AddCounts(
	_ context.Context,
	id uuid.UUID,
	reviewed, correct int,
) (*domain.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	if !session.IsOpen() {
		return nil, store.ErrSessionClosed
	}
	session.ItemsReviewed += reviewed
	session.CorrectCount += correct
	return cloneSession(session), nil
}

// CloseStale implements store.SessionStore.CloseStale.
func (s *SessionStore) CloseStale(_ context.Context, startedBefore, endedAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range s.open {
		session := s.sessions[id]
		if session.StartedAt.Before(startedBefore) {
			s.closeLocked(session, endedAt)
			n++
		}
	}
	return n, nil
}
