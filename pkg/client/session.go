package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// Session is the signed-in user and the token sent with every request.
type Session struct {
	Token      string       `json:"token"`
	User       *models.User `json:"user,omitempty"`
	RememberMe bool         `json:"remember_me"`
	SignedInAt time.Time    `json:"signed_in_at"`
}

// Sessions keeps the current session in memory and, for remembered
// sessions, in a file that survives restarts.
type Sessions struct {
	path string

	mu      sync.Mutex
	current *Session
	loaded  bool
}

// NewSessions returns a store backed by path; an empty path keeps every
// session in memory.
func NewSessions(path string) *Sessions {
	return &Sessions{path: path}
}

// Save replaces the current session. Only remembered sessions are written to disk;
// saving a session that is not remembered forgets any previous file.
func (s *Sessions) Save(session Session) error {
	if session.SignedInAt.IsZero() {
		session.SignedInAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &session
	s.loaded = true

	if s.path == "" {
		return nil
	}
	if !session.RememberMe {
		return s.removeFile()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Current returns the session, loading a remembered one on first use.
// A missing or corrupt file means signed out.
func (s *Sessions) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loaded = true
		s.current = s.readFile()
	}
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Clear signs out, removing any remembered session.
func (s *Sessions) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.loaded = true
	if s.path == "" {
		return nil
	}
	return s.removeFile()
}

func (s *Sessions) readFile() *Session {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		return nil
	}
	return &session
}

func (s *Sessions) removeFile() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
