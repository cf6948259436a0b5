// Package session holds the authenticated identity of each dashboard session
// and mirrors it one way into persistent storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"jobpilot-admin/internal/roles"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/logger"
)

// RemoteLogoutFunc tells the upstream API that a session ended
type RemoteLogoutFunc func(ctx context.Context, accessToken, refreshToken string) error

// LogoutHook runs after a session has been cleared locally
type LogoutHook func(ctx context.Context, sessionID string)

// Store is the single source of truth for one session. Every transition is
// applied in memory first and then written to storage while the lock is held,
// so storage never sees writes out of order.
type Store struct {
	id      string
	storage Storage
	log     *logger.Logger
	remote  RemoteLogoutFunc
	hooks   []LogoutHook

	mu           sync.RWMutex
	state        State
	accessToken  string
	refreshToken string
	user         *User
	role         roles.Role
	restored     bool
}

func newStore(id string, storage Storage, log *logger.Logger, remote RemoteLogoutFunc, hooks []LogoutHook) *Store {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Store{
		id:      id,
		storage: storage,
		log:     log,
		remote:  remote,
		hooks:   hooks,
	}
}

// NewStore creates an unauthenticated store backed by storage
func NewStore(id string, storage Storage, log *logger.Logger) *Store {
	return newStore(id, storage, log, nil, nil)
}

type loginPayload struct {
	Data *struct {
		Attributes *struct {
			User   *User `json:"user"`
			Tokens *struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"tokens"`
		} `json:"attributes"`
	} `json:"data"`
}

// Login authenticates the session from the raw login response. A response
// without data.attributes.user and data.attributes.tokens.accessToken returns
// ErrMalformedLoginResponse and leaves the session untouched.
func (s *Store) Login(ctx context.Context, raw []byte) (*User, error) {
	var payload loginPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLoginResponse, err)
	}
	if payload.Data == nil || payload.Data.Attributes == nil {
		return nil, fmt.Errorf("%w: missing data.attributes", ErrMalformedLoginResponse)
	}
	attrs := payload.Data.Attributes
	if attrs.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedLoginResponse)
	}
	if attrs.Tokens == nil || attrs.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrMalformedLoginResponse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := *attrs.User
	s.state = Authenticated
	s.accessToken = attrs.Tokens.AccessToken
	s.refreshToken = attrs.Tokens.RefreshToken
	s.user = &user
	s.role = roles.Parse(user.Role)
	s.restored = true

	if err := s.persistLocked(ctx); err != nil {
		s.resetLocked()
		return nil, err
	}

	s.log.LogAuthSuccess(ctx, user.Identifier(), "password")
	out := user
	return &out, nil
}

// Logout clears the session locally and then tells the API. The remote call
// is best effort: its failure is logged and never blocks the local logout.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	access, refresh := s.accessToken, s.refreshToken
	s.resetLocked()
	if err := s.storage.Clear(ctx, s.id); err != nil {
		s.log.ErrorWithContext(ctx, "failed to clear persisted session", err, map[string]interface{}{"session_id": s.id})
	}
	s.mu.Unlock()

	if s.remote != nil && access != "" {
		if err := s.remote(ctx, access, refresh); err != nil {
			s.log.WithSessionID(s.id).WarnContext(ctx, "remote logout failed", "error", err)
		}
	}

	s.runHooks(ctx)
}

// HandleUnauthorized forces a local logout after the API rejected the
// session's token.
func (s *Store) HandleUnauthorized(ctx context.Context) {
	s.mu.Lock()
	if s.state != Authenticated {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	if err := s.storage.Clear(ctx, s.id); err != nil {
		s.log.ErrorWithContext(ctx, "failed to clear persisted session", err, map[string]interface{}{"session_id": s.id})
	}
	s.mu.Unlock()

	s.log.WithSessionID(s.id).WarnContext(ctx, "session logged out after upstream 401")
	s.runHooks(ctx)
}

// RestoreFromStorage rebuilds the session from persisted accessToken and
// user. Missing or undecodable values leave it unauthenticated. Only the
// first call reads storage.
func (s *Store) RestoreFromStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return nil
	}

	rec, err := s.storage.Load(ctx, s.id)
	if errors.Is(err, ErrSessionNotFound) {
		s.restored = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	s.restored = true

	access := rec[constants.SESSION_FIELD_ACCESS_TOKEN]
	rawUser := rec[constants.SESSION_FIELD_USER]
	if access == "" || rawUser == "" {
		return nil
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.log.WithSessionID(s.id).WarnContext(ctx, "discarding undecodable persisted user", "error", err)
		return nil
	}

	s.state = Authenticated
	s.accessToken = access
	s.refreshToken = rec[constants.SESSION_FIELD_REFRESH_TOKEN]
	s.user = &user
	s.role = roles.Parse(user.Role)
	return nil
}

// UpdateUser replaces the current user, keeping the role when the new user
// carries none.
func (s *Store) UpdateUser(ctx context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	s.user = &user
	if user.Role != "" {
		s.role = roles.Parse(user.Role)
	}
	return s.persistLocked(ctx)
}

// UpdateTokens stores refreshed tokens. An empty refresh token keeps the
// current one.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	s.accessToken = accessToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	return s.persistLocked(ctx)
}

func (s *Store) ID() string {
	return s.id
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Authenticated
}

func (s *Store) Role() roles.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:              s.id,
		State:           s.state.String(),
		Authenticated:   s.state == Authenticated,
		Role:            s.role,
		Permissions:     roles.PermissionsFor(s.role),
		HasRefreshToken: s.refreshToken != "",
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) resetLocked() {
	s.state = Unauthenticated
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.role = roles.RoleUnknown
	s.restored = true
}

// persistLocked writes the in-memory state to storage. Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.state != Authenticated {
		return s.storage.Clear(ctx, s.id)
	}

	rec := Record{
		constants.SESSION_FIELD_ACCESS_TOKEN:  s.accessToken,
		constants.SESSION_FIELD_REFRESH_TOKEN: s.refreshToken,
	}
	if s.user != nil {
		raw, err := json.Marshal(s.user)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		rec[constants.SESSION_FIELD_USER] = string(raw)
	}

	if err := s.storage.Save(ctx, s.id, rec); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

func (s *Store) runHooks(ctx context.Context) {
	for _, hook := range s.hooks {
		hook(ctx, s.id)
	}
}
