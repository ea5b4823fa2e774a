package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	// Load returns "" when nothing is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a JSON file readable only by its owner.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

type storedToken struct {
	Token string `json:"token"`
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return "", fmt.Errorf("failed to parse token file: %w", err)
	}
	return st.Token, nil
}

func (s *FileTokenStore) Save(token string) error {
	data, err := json.Marshal(storedToken{Token: token})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Session tracks who is signed in. It changes only through Init, Login,
// Register and Logout.
type Session struct {
	client *Client
	store  TokenStore

	mu   sync.RWMutex
	user *User
}

func NewSession(c *Client, store TokenStore) *Session {
	return &Session{client: c, store: store}
}

// Init restores a persisted session. A token the server rejects is cleared
// and leaves the session signed out without an error.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		s.reset()
		return nil
	}

	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			s.reset()
			return s.store.Clear()
		}
		s.client.SetToken("")
		return err
	}

	s.setUser(user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.start(resp)
}

func (s *Session) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.start(resp)
}

// Logout forgets the session locally. Tokens are not revoked server side.
func (s *Session) Logout() error {
	s.reset()
	return s.store.Clear()
}

// User returns the signed-in user, if any.
func (s *Session) User() (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

func (s *Session) start(resp *AuthResponse) (*User, error) {
	if err := s.store.Save(resp.Token); err != nil {
		return nil, err
	}

	s.client.SetToken(resp.Token)
	user := resp.User
	s.setUser(&user)
	return &user, nil
}

func (s *Session) setUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.client.SetToken("")
	s.setUser(nil)
}
