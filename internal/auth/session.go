package auth

import (
	"context"
	"errors"
	"sync"
)

// ErrUnauthenticated is returned when an operation needs the current actor and
// nobody is signed in. It is never retried.
var ErrUnauthenticated = errors.New("not authenticated")

// ActorSource reports the identity of the current actor on demand.
type ActorSource interface {
	CurrentActor(ctx context.Context) (int64, error)
}

// Session holds the signed-in user of this client process.
type Session struct {
	mu    sync.RWMutex
	actor int64
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) CurrentActor(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actor == 0 {
		return 0, ErrUnauthenticated
	}
	return s.actor, nil
}

func (s *Session) SignIn(userID int64) {
	s.mu.Lock()
	s.actor = userID
	s.mu.Unlock()
}

func (s *Session) SignOut() {
	s.mu.Lock()
	s.actor = 0
	s.mu.Unlock()
}
