// Package file keeps the token pair in a small JSON document on local disk,
// one entry per profile. It is the CLI's default credential store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CredentialStore struct {
	mu      sync.Mutex
	path    string
	profile string
	log     *zap.SugaredLogger
}

func NewCredentialStore(path, profile string, log *zap.SugaredLogger) *CredentialStore {
	return &CredentialStore{path: path, profile: profile, log: log}
}

func (s *CredentialStore) AccessToken(_ context.Context) (string, bool) {
	creds := s.current()
	return creds.AccessToken, creds.AccessToken != ""
}

func (s *CredentialStore) RefreshToken(_ context.Context) (string, bool) {
	creds := s.current()
	return creds.RefreshToken, creds.RefreshToken != ""
}

func (s *CredentialStore) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		s.log.Warnw("credentials file unreadable, rewriting", "path", s.path, "error", err)
		profiles = make(map[string]credentials)
	}
	profiles[s.profile] = credentials{AccessToken: accessToken, RefreshToken: refreshToken}

	return s.save(profiles)
}

func (s *CredentialStore) ClearTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		s.log.Warnw("credentials file unreadable, rewriting", "path", s.path, "error", err)
		profiles = make(map[string]credentials)
	}
	if _, ok := profiles[s.profile]; !ok && err == nil {
		return nil
	}
	delete(profiles, s.profile)

	return s.save(profiles)
}

func (s *CredentialStore) current() credentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		s.log.Warnw("failed to read credentials file", "path", s.path, "error", err)
		return credentials{}
	}
	return profiles[s.profile]
}

func (s *CredentialStore) load() (map[string]credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]credentials), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	profiles := make(map[string]credentials)
	if len(data) == 0 {
		return profiles, nil
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return profiles, nil
}

// save replaces the file through a rename so readers in other processes
// never see a half-written pair.
func (s *CredentialStore) save(profiles map[string]credentials) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
