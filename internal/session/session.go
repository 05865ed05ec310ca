// Package session owns the client's persisted identity: the auth token and
// the username, each held in its own persisted store.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/findings/internal/model"
	"github.com/ppiankov/findings/internal/storage"
	"github.com/ppiankov/findings/internal/store"
)

// Slot keys
const (
	TokenKey    = "jwt"
	UsernameKey = "username"
)

// ErrEmptyCredential is returned by Login for an empty token or username.
var ErrEmptyCredential = errors.New("empty credential")

// Session bundles the token and username stores. Build one per client
// process and pass it to whatever needs identity.
type Session struct {
	Token    *store.Store[string]
	Username *store.Store[string]

	backend storage.Storage
	log     *zap.Logger
}

// New creates a session over an already opened backend.
func New(backend storage.Storage, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = storage.Noop{}
	}

	return &Session{
		Token:    store.New[string](TokenKey, backend, store.StringCodec{}, store.WithLogger(logger)),
		Username: store.New[string](UsernameKey, backend, store.StringCodec{}, store.WithLogger(logger)),
		backend:  backend,
		log:      logger,
	}
}

// Open opens the configured backend and builds a session on it. Storage
// problems never fail the session: it falls back to memory-only operation.
func Open(cfg model.StorageConfig, env storage.Environment, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := storage.Open(cfg, env)
	switch {
	case err == nil:
		logger.Debug("session storage opened", zap.String("backend", cfg.Backend), zap.String("location", storage.Location(backend)))
	case errors.Is(err, storage.ErrUnavailable):
		logger.Debug("session storage unavailable, state is memory-only", zap.Error(err))
	default:
		logger.Warn("session storage misconfigured, state is memory-only", zap.Error(err))
	}

	return New(backend, logger)
}

// Login stores both credentials. Empty values are rejected rather than
// treated as a logout.
func (s *Session) Login(token, username string) error {
	if token == "" {
		return fmt.Errorf("token: %w", ErrEmptyCredential)
	}
	if username == "" {
		return fmt.Errorf("username: %w", ErrEmptyCredential)
	}

	s.Token.Set(token)
	s.Username.Set(username)
	return nil
}

// SetToken replaces the token only, e.g. after a refresh.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("token: %w", ErrEmptyCredential)
	}
	s.Token.Set(token)
	return nil
}

// Logout clears both credentials.
func (s *Session) Logout() {
	s.Token.Clear()
	s.Username.Clear()
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	_, ok := s.Token.Get()
	return ok
}

// Persistent reports whether the session survives the process.
func (s *Session) Persistent() bool {
	return s.Token.Persistent() && s.Username.Persistent()
}

// Location describes where the session is kept, "" when nowhere.
func (s *Session) Location() string {
	return storage.Location(s.backend)
}

// Close releases the storage backend.
func (s *Session) Close() error {
	return storage.Close(s.backend)
}
