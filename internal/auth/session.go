package auth

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/basewire/basewire-go/internal/constants"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnauthenticated means no credential is held.
	StateUnauthenticated State = iota
	// StateAuthenticated means a credential is held and presumed usable.
	StateAuthenticated
	// StateExpired means the server rejected the held credential; a
	// refresh is required before it can be used again.
	StateExpired
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// Session holds the client's credential. A single RWMutex guards the slot:
// request decoration takes a read snapshot, credential updates take the
// write lock. Every change is mirrored to the Store.
type Session struct {
	mu       sync.RWMutex
	cred     *Credential
	state    State
	store    Store
	onChange []func(cred *Credential)
}

// NewSession creates a session backed by the given store and restores any
// persisted credential. A nil store means NoopStore.
func NewSession(store Store) (*Session, error) {
	if store == nil {
		store = NoopStore{}
	}

	session := &Session{store: store}

	cred, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("restoring credential: %w", err)
	}

	if cred != nil && cred.Token != "" {
		session.cred = cred
		session.state = StateAuthenticated

		if !cred.Valid() {
			session.state = StateExpired
		}
	}

	return session, nil
}

// Set installs a credential, moves the session to Authenticated, and
// persists it.
func (s *Session) Set(cred *Credential) error {
	s.mu.Lock()

	s.cred = cred
	s.state = StateAuthenticated

	err := s.store.Save(cred)
	listeners := append([]func(*Credential){}, s.onChange...)

	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cred)
	}

	if err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}

	return nil
}

// Clear drops the credential, moves the session to Unauthenticated, and
// clears persistence.
func (s *Session) Clear() error {
	s.mu.Lock()

	s.cred = nil
	s.state = StateUnauthenticated

	err := s.store.Clear()
	listeners := append([]func(*Credential){}, s.onChange...)

	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}

	if err != nil {
		return fmt.Errorf("clearing persisted credential: %w", err)
	}

	return nil
}

// Snapshot returns a copy of the current credential, or nil.
func (s *Session) Snapshot() *Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return nil
	}

	copied := *s.cred

	return &copied
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Token returns the current token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return ""
	}

	return s.cred.Token
}

// Record returns the authenticated record, or nil.
func (s *Session) Record() *basewire.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return nil
	}

	return s.cred.Record
}

// IsValid reports whether a non-expired token is held.
func (s *Session) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state == StateAuthenticated && s.cred.Valid()
}

// IsSuperuser reports whether the authenticated record belongs to the
// superusers collection.
func (s *Session) IsSuperuser() bool {
	record := s.Record()

	return record != nil && record.CollectionName == constants.SuperusersCollection
}

// Decorate attaches the auth token to an outgoing request's headers. It
// does nothing when no credential is held or the caller already set an
// Authorization header.
func (s *Session) Decorate(header http.Header) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil || s.cred.Token == "" {
		return
	}

	if header.Get("Authorization") != "" {
		return
	}

	header.Set("Authorization", s.cred.Token)
}

// HandleResponse observes a response status. A 401 while Authenticated
// moves the session to Expired and returns true, signaling the pipeline
// that a refresh attempt is worthwhile. Any other status leaves the state
// untouched.
func (s *Session) HandleResponse(statusCode int) bool {
	if statusCode != http.StatusUnauthorized {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		return false
	}

	s.state = StateExpired

	return true
}

// OnChange registers a listener invoked after every credential change. The
// returned function removes the listener.
func (s *Session) OnChange(fn func(cred *Credential)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onChange = append(s.onChange, fn)
	index := len(s.onChange) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if index < len(s.onChange) {
			s.onChange[index] = func(*Credential) {}
		}
	}
}
