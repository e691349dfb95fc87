// Package session manages the persisted authentication state: the API
// token and the user record it belongs to. The session is an explicit
// object handed to components that need it, with a validate-on-start
// and clear-on-logout lifecycle.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/coffertool/coffer/internal/model"
)

// State is the durable session state written to disk.
type State struct {
	SavedAt time.Time  `json:"saved_at"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

// Store reads and writes session state under a directory.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir. When dir is empty the
// XDG data directory is used, matching where the rest of the tool
// keeps its state.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, "session.json")}, nil
}

// DefaultDataDir resolves the tool's data directory, honoring
// XDG_DATA_HOME.
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "coffer"), nil
}

// Load reads the saved state. A missing file returns (nil, nil).
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return &state, nil
}

// Save writes the state, readable by the owner only.
func (s *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the saved state. Clearing an absent state is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
