package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Store holds the single bearer credential for the application. It is the
// only owner of the token: auth flows write it, the request layer reads it.
// The token is persisted to a small JSON file so it survives restarts, the
// way the browser build kept it in localStorage.
type Store struct {
	filePath string
	mu       sync.RWMutex
	token    string
}

type stateFile struct {
	AccessToken string `json:"accessToken"`
}

func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath}
	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "load session file")
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	var state stateFile
	if err := json.Unmarshal(raw, &state); err != nil {
		return errors.Wrap(err, "parse session file")
	}
	s.token = state.AccessToken
	return nil
}

func (s *Store) persist() error {
	raw, err := json.MarshalIndent(stateFile{AccessToken: s.token}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.Wrap(err, "create session dir")
		}
	}
	return errors.Wrap(os.WriteFile(s.filePath, raw, 0600), "write session file")
}

// Token returns the stored credential, or "" when none is held. An expired
// JWT counts as absent and is cleared on sight, so callers never send a
// credential the server is guaranteed to reject.
func (s *Store) Token() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" || !tokenExpired(token) {
		return token
	}
	log.Printf("[Session] stored token is expired, clearing")
	if err := s.Clear(); err != nil {
		log.Printf("[Session] failed to clear expired token: %v", err)
	}
	return ""
}

// Set stores and persists a new credential.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.persist()
}

// Clear drops the credential and removes the session file. Clearing an
// already-empty store succeeds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}

// tokenExpired checks the exp claim of a JWT credential. The signature is
// deliberately not verified; only the server can do that. Opaque non-JWT
// tokens never expire locally.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
