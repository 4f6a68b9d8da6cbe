package memory

import (
	"context"
	"sync"
)

type CredentialStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) AccessToken(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accessToken, s.accessToken != ""
}

func (s *CredentialStore) RefreshToken(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refreshToken, s.refreshToken != ""
}

func (s *CredentialStore) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = accessToken
	s.refreshToken = refreshToken
	return nil
}

func (s *CredentialStore) ClearTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refreshToken = ""
	return nil
}
