package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// Validator confirms that a token still identifies a user. Satisfied by
// the API client's Me call.
type Validator interface {
	Me(ctx context.Context) (*model.User, error)
}

// Session is the live authenticated identity for one invocation.
type Session struct {
	store *Store
	user  model.User
	token string
}

// User returns the authenticated user.
func (s *Session) User() model.User {
	return s.user
}

// Token returns the bearer token.
func (s *Session) Token() string {
	return s.token
}

// Begin persists a fresh login and returns the live session.
func Begin(store *Store, token string, user model.User) (*Session, error) {
	if !user.Role.Valid() {
		return nil, fmt.Errorf("cannot start session: unknown role %q", user.Role)
	}
	state := &State{Token: token, User: user, SavedAt: time.Now()}
	if err := store.Save(state); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &Session{store: store, token: token, user: user}, nil
}

// Resume loads the saved state and validates the token against the API.
// A failed validation clears the stored state and forces a return to the
// unauthenticated state; there is no inline recovery from a dead token.
func Resume(ctx context.Context, store *Store, validator Validator) (*Session, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if state == nil || state.Token == "" {
		return nil, common.ErrNotAuthenticated
	}

	user, err := validator.Me(ctx)
	if err != nil {
		slog.Info("Stored token failed validation, clearing session",
			"saved_at", state.SavedAt.Format("2006-01-02"))
		if clearErr := store.Clear(); clearErr != nil {
			slog.Warn("Failed to clear stale session", "error", clearErr)
		}
		return nil, fmt.Errorf("%w: stored token rejected", common.ErrNotAuthenticated)
	}

	return &Session{store: store, token: state.Token, user: *user}, nil
}

// End clears the persisted state. The session must not be used after.
func (s *Session) End() error {
	return s.store.Clear()
}
