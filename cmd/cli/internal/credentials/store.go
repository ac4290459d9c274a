package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Sentinel errors
var (
	// ErrSessionNotFound is returned when no session is saved under a profile.
	ErrSessionNotFound = errors.New("session not found, run login first")

	// ErrSessionExpired is returned for a saved session past its expiry.
	ErrSessionExpired = errors.New("session expired, run login again")
)

// DefaultProfile is used when no profile is named.
const DefaultProfile = "default"

// Session is a saved login.
type Session struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	SavedAt   time.Time `json:"saved_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Config represents the sessions file.
type Config struct {
	Version  int                `json:"version"`
	Sessions map[string]Session `json:"sessions"`
}

// Store manages saved sessions on the local filesystem.
type Store struct {
	baseDir string
}

// NewStore creates a new session store.
// If baseDir is empty, uses ~/.gasdesk/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".gasdesk")
	}

	// Create directory with 0700 permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	store := &Store{baseDir: baseDir}

	// Initialize config if it doesn't exist
	if err := store.ensureConfig(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return store, nil
}

// Save stores session under profile, replacing any previous session.
func (s *Store) Save(profile string, session Session) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	session.SavedAt = time.Now().UTC()
	cfg.Sessions[profileName(profile)] = session

	return s.saveConfig(cfg)
}

// Get returns the live session saved under profile.
func (s *Store) Get(profile string) (*Session, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	session, ok := cfg.Sessions[profileName(profile)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Delete removes the session saved under profile.
func (s *Store) Delete(profile string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	name := profileName(profile)
	if _, ok := cfg.Sessions[name]; !ok {
		return ErrSessionNotFound
	}
	delete(cfg.Sessions, name)

	return s.saveConfig(cfg)
}

// Profiles lists the saved profile names in order.
func (s *Store) Profiles() ([]string, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Sessions))
	for name := range cfg.Sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func profileName(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

// ensureConfig creates an empty config if it doesn't exist.
func (s *Store) ensureConfig() error {
	// Check if config exists
	if _, err := os.Stat(s.configPath()); err == nil {
		return nil // Config exists
	}

	// Create empty config
	cfg := &Config{
		Version:  1,
		Sessions: make(map[string]Session),
	}

	return s.saveConfig(cfg)
}

func (s *Store) configPath() string {
	return filepath.Join(s.baseDir, "sessions.json")
}

// loadConfig reads the config file.
func (s *Store) loadConfig() (*Config, error) {
	data, err := os.ReadFile(s.configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}

	// Ensure sessions map is initialized
	if cfg.Sessions == nil {
		cfg.Sessions = make(map[string]Session)
	}

	return &cfg, nil
}

// saveConfig writes the config file atomically.
func (s *Store) saveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	// Write to temp file first
	configPath := s.configPath()
	tempPath := configPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save sessions: %w", err)
	}

	return nil
}
