package client

import (
	"context"
	"sync"
)

// Status is the authentication lifecycle state.
type Status string

const (
	// StatusLoading means a login or startup check is in flight. It is
	// never persisted: a fresh process always recomputes it by running
	// CheckAuth, so an abnormal shutdown can't leave the client stuck
	// "loading forever".
	StatusLoading Status = "loading"

	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// State is one snapshot of the session lifecycle. Invariant: status is
// authenticated exactly when User is set and Token is non-empty; a failure
// always resets both, so the state never claims authentication it can't back.
type State struct {
	Status     Status
	User       *User
	Token      string
	ErrMessage string
}

// event is a lifecycle transition input. Transitions are pure functions of
// (state, event) computed by reduce; the store applies them under its lock.
type event interface{ isEvent() }

type eventStarted struct{}
type eventAuthenticated struct {
	user  *User
	token string
}
type eventFailed struct{ message string }
type eventLoggedOut struct{}

func (eventStarted) isEvent()       {}
func (eventAuthenticated) isEvent() {}
func (eventFailed) isEvent()        {}
func (eventLoggedOut) isEvent()     {}

// reduce computes the next state for an event. Pure: no IO, no mutation of
// the input.
func reduce(s State, ev event) State {
	switch ev := ev.(type) {
	case eventStarted:
		return State{Status: StatusLoading, User: s.User, Token: s.Token}

	case eventAuthenticated:
		return State{
			Status: StatusAuthenticated,
			User:   ev.user,
			Token:  ev.token,
		}

	case eventFailed:
		return State{
			Status:     StatusUnauthenticated,
			ErrMessage: ev.message,
		}

	case eventLoggedOut:
		return State{Status: StatusUnauthenticated}

	default:
		return s
	}
}

// SessionStore owns the client's authentication lifecycle. The application
// root creates one and hands it to whatever needs the session; there is no
// package-level singleton.
//
// Concurrent Login/CheckAuth calls are not serialized: each applies its
// result as it lands, and the last write wins. This mirrors how a UI uses
// the store (one flow in flight at a time) and is the documented policy, not
// an oversight.
type SessionStore struct {
	api    API
	tokens TokenStore

	mu    sync.Mutex
	state State
}

// NewSessionStore creates a session store. The initial state is loading;
// call CheckAuth to resolve it.
func NewSessionStore(api API, tokens TokenStore) *SessionStore {
	return &SessionStore{
		api:    api,
		tokens: tokens,
		state:  State{Status: StatusLoading},
	}
}

// State returns a snapshot of the current state.
func (s *SessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// apply runs one transition under the lock.
func (s *SessionStore) apply(ev event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, ev)
}

// Login authenticates with the server. On success the token is persisted
// and the state becomes authenticated. On failure the state resets to
// unauthenticated with the error message, and the error is also returned so
// callers can react synchronously.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.apply(eventStarted{})

	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.apply(eventFailed{message: errMessage(err)})
		return err
	}

	user, err := s.api.Verify(ctx, creds.AuthToken)
	if err != nil {
		s.apply(eventFailed{message: errMessage(err)})
		return err
	}

	// Only the token touches disk.
	if err := s.tokens.Save(creds.AuthToken); err != nil {
		s.apply(eventFailed{message: "failed to persist session"})
		return err
	}

	s.apply(eventAuthenticated{user: user, token: creds.AuthToken})
	return nil
}

// Logout revokes the session server-side (best effort), clears the persisted
// token, and unconditionally resets to unauthenticated.
func (s *SessionStore) Logout(ctx context.Context) error {
	token := s.State().Token
	if token != "" {
		// A failed revocation doesn't keep the client logged in; the
		// local session ends regardless.
		_ = s.api.Logout(ctx, token)
	}

	err := s.tokens.Clear()
	s.apply(eventLoggedOut{})
	return err
}

// CheckAuth resolves the startup state. No persisted token means
// unauthenticated immediately. With a token, the server decides: a valid one
// rehydrates the user, a stale one is discarded and never retried.
func (s *SessionStore) CheckAuth(ctx context.Context) error {
	s.apply(eventStarted{})

	token, err := s.tokens.Load()
	if err != nil {
		s.apply(eventFailed{message: errMessage(err)})
		return err
	}
	if token == "" {
		s.apply(eventLoggedOut{})
		return nil
	}

	user, err := s.api.Verify(ctx, token)
	if err != nil {
		_ = s.tokens.Clear()
		s.apply(eventFailed{message: errMessage(err)})
		return err
	}

	s.apply(eventAuthenticated{user: user, token: token})
	return nil
}

// errMessage extracts a human-readable message for the state.
func errMessage(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Message
	}
	return err.Error()
}
