// Package client is a Go client for the user directory API. It carries the
// application-side logic: an authentication state machine persisted across
// sessions, and a directory view with client-side filtering and pagination.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"userdir-service/internal/model"
)

// APIError represents the uniform error envelope returned by the API
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// UserForm is the request body for create and full-update operations
type UserForm struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber int    `json:"phoneNumber"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Client talks to the user directory service. The cookie jar carries the
// HTTP-only access_token session cookie between calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	auth AuthState
}

// New creates a client for the given base URL
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

// Login authenticates against the API. The auth state moves through
// loading; on success it holds the user, on failure the API error.
func (c *Client) Login(email, password string) (*model.User, error) {
	c.auth.loginStart()

	var user model.User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(http.MethodPost, "/auth/login", body, &user); err != nil {
		c.auth.loginFailure(err)
		return nil, err
	}

	c.auth.loginSuccess(&user)
	return &user, nil
}

// Logout clears the auth state and drops the session cookie
func (c *Client) Logout() {
	c.auth.logout()
	if jar, err := cookiejar.New(nil); err == nil {
		c.HTTPClient.Jar = jar
	}
}

// Auth returns a snapshot of the client-side authentication state
func (c *Client) Auth() AuthState {
	return c.auth
}

// Register creates an account through the admin-gated registration endpoint
func (c *Client) Register(form UserForm) (*model.User, error) {
	var resp struct {
		Message string     `json:"message"`
		User    model.User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/auth/register", form, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateUser creates a user through the public directory endpoint
func (c *Client) CreateUser(form UserForm) (*model.User, error) {
	var resp struct {
		Message string     `json:"message"`
		User    model.User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/users", form, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers fetches the full user list, newest first
func (c *Client) ListUsers() ([]model.User, error) {
	var users []model.User
	if err := c.do(http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user by id
func (c *Client) GetUser(id uint) (*model.User, error) {
	var user model.User
	if err := c.do(http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces a user record
func (c *Client) UpdateUser(id uint, form UserForm) (*model.User, error) {
	var resp struct {
		Message     string     `json:"message"`
		UpdatedUser model.User `json:"updatedUser"`
	}
	if err := c.do(http.MethodPut, fmt.Sprintf("/users/%d", id), form, &resp); err != nil {
		return nil, err
	}
	return &resp.UpdatedUser, nil
}

// PatchUser applies a partial update with only the supplied fields
func (c *Client) PatchUser(id uint, fields map[string]interface{}) (*model.User, error) {
	var resp struct {
		Message     string     `json:"message"`
		UpdatedUser model.User `json:"updatedUser"`
	}
	if err := c.do(http.MethodPatch, fmt.Sprintf("/users/%d", id), fields, &resp); err != nil {
		return nil, err
	}
	return &resp.UpdatedUser, nil
}

// DeleteUser permanently removes a user
func (c *Client) DeleteUser(id uint) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

// do performs one JSON request and decodes either the result or the error
// envelope.
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Success bool   `json:"success"`
			Status  int    `json:"status"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Status == 0 {
			return &APIError{Status: resp.StatusCode, Message: string(respBody)}
		}
		return &APIError{Status: envelope.Status, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
