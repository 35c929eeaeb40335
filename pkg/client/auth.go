package client

import (
	"encoding/json"
	"errors"
	"os"

	"userdir-service/internal/model"
)

// AuthState is the client-side authentication state. It transitions through
// loading on login and afterwards holds either the authenticated user or the
// failure.
type AuthState struct {
	User    *model.User `json:"user"`
	Loading bool        `json:"-"`
	Err     error       `json:"-"`
}

func (s *AuthState) loginStart() {
	s.Loading = true
	s.Err = nil
}

func (s *AuthState) loginSuccess(user *model.User) {
	s.User = user
	s.Loading = false
	s.Err = nil
}

func (s *AuthState) loginFailure(err error) {
	s.User = nil
	s.Loading = false
	s.Err = err
}

func (s *AuthState) logout() {
	*s = AuthState{}
}

// SaveState writes the authenticated user to disk. This is the explicit
// serialize boundary replacing browser local storage.
func (c *Client) SaveState(path string) error {
	payload, err := json.Marshal(c.auth)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadState restores a previously saved user. A missing file leaves the
// state empty and is not an error.
func (c *Client) LoadState(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(payload, &c.auth)
}
