// Package fs provides file-based persistence: the cached session bundle
// and the downloaded document files.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/sdsget"
)

// Ensure SessionStore implements sdsget.SessionStore at compile time.
var _ sdsget.SessionStore = (*SessionStore)(nil)

// SessionStore persists one session bundle as a JSON file. Load returns
// the bundle verbatim; staleness is discovered downstream.
type SessionStore struct {
	path string
}

// NewSessionStore creates a SessionStore backed by the given file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the cached session bundle. Returns ENOTFOUND if the file does
// not exist and EINVALID if it cannot be decoded.
func (s *SessionStore) Load(ctx context.Context) (*sdsget.ProviderSession, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, sdsget.Errorf(sdsget.ENOTFOUND, "no cached session at %s", s.path)
	} else if err != nil {
		return nil, err
	}

	var session sdsget.ProviderSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, sdsget.Errorf(sdsget.EINVALID, "malformed session cache %s: %v", s.path, err)
	}
	return &session, nil
}

// Save writes the session bundle, creating parent directories on demand.
// The file holds authentication cookies, so it is not world-readable.
func (s *SessionStore) Save(ctx context.Context, session *sdsget.ProviderSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
