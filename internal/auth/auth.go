// Package auth tracks the signed-in user of a photo session.
//
// A Session is created once per process and injected into the edit session
// and the persistence gateway, which both check it before touching remote
// state.
package auth

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// User identifies a signed-in account.
type User struct {
	ID    string `json:"id" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Listener is called with the new user after every login or logout. The
// boolean is false after logout.
type Listener func(u User, signedIn bool)

// Session holds the current user.
type Session struct {
	mu        sync.RWMutex
	user      User
	signedIn  bool
	nextID    int
	listeners map[int]Listener
	validate  *validator.Validate
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{
		listeners: make(map[int]Listener),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Login signs u in, replacing any current user.
func (s *Session) Login(u User) error {
	u.ID = strings.TrimSpace(u.ID)
	u.Email = strings.TrimSpace(u.Email)
	if err := s.validate.Struct(u); err != nil {
		return editerr.Validation("auth.login", err)
	}

	s.mu.Lock()
	s.user, s.signedIn = u, true
	ls := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range ls {
		l(u, true)
	}
	return nil
}

// Logout signs the current user out. Logging out while signed out is a
// no-op and notifies nobody.
func (s *Session) Logout() {
	s.mu.Lock()
	if !s.signedIn {
		s.mu.Unlock()
		return
	}
	s.user, s.signedIn = User{}, false
	ls := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range ls {
		l(User{}, false)
	}
}

// CurrentUser returns the signed-in user.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.signedIn
}

// Require returns the signed-in user, or a validation error for op when
// nobody is signed in.
func (s *Session) Require(op string) (User, error) {
	u, ok := s.CurrentUser()
	if !ok {
		return User{}, editerr.Validationf(op, "no signed-in user")
	}
	return u, nil
}

// Subscribe registers l for login and logout events and returns a function
// that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// snapshotListeners copies the listener set in registration order. Callers
// hold s.mu.
func (s *Session) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}
