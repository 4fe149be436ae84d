package client

import (
	"context"
	"sync"
)

// AuthStore tracks the signed-in user.
type AuthStore struct {
	client *Client

	mu      sync.RWMutex
	user    *User
	loading bool
	err     string
}

func NewAuthStore(c *Client) *AuthStore {
	return &AuthStore{client: c}
}

func (s *AuthStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthStore) Token() string {
	return s.client.tokens.Get()
}

func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error is the message of the last failed Login or Register.
func (s *AuthStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *AuthStore) IsAuthenticated() bool {
	return s.User() != nil && s.Token() != ""
}

func (s *AuthStore) Login(ctx context.Context, creds LoginCredentials) bool {
	return s.authenticate(ctx, "/auth/login", creds, "Login failed")
}

func (s *AuthStore) Register(ctx context.Context, data RegisterData) bool {
	return s.authenticate(ctx, "/auth/register", data, "Registration failed")
}

func (s *AuthStore) authenticate(ctx context.Context, path string, body interface{}, fallback string) bool {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var resp AuthResponse
	err := s.client.Post(ctx, path, body, &resp)
	if err == nil {
		err = s.client.tokens.Set(resp.AccessToken)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = ErrorMessage(err, fallback)
		return false
	}
	s.user = resp.User
	return true
}

// FetchUser reloads the current user. Any failure logs out.
func (s *AuthStore) FetchUser(ctx context.Context) error {
	if s.Token() == "" {
		return nil
	}

	var user User
	if err := s.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		s.Logout()
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	_ = s.client.tokens.Clear()
}
