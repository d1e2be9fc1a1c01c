package config

import (
	"sync"

	"github.com/zjrosen/scribe/internal/log"
)

// Store holds the active configuration. A failed reload keeps the previous
// configuration in place.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  Config
}

// NewStore loads path. On error the store still holds the defaults so the
// editor can start and surface the error.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, cfg: Defaults()}
	cfg, err := Load(path)
	if err != nil {
		log.ErrorErr(log.CatConfig, "loading config failed, using defaults", err, "path", path)
		return s, err
	}
	s.cfg = cfg
	return s, nil
}

// Path returns the config file path, or "" when running on defaults.
func (s *Store) Path() string { return s.path }

// Config returns the active configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Reload re-reads the file.
func (s *Store) Reload() (Config, error) {
	cfg, err := Load(s.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.ErrorErr(log.CatConfig, "reloading config failed, keeping previous", err, "path", s.path)
		return s.cfg, err
	}
	s.cfg = cfg
	log.Info(log.CatConfig, "reloaded config", "path", s.path)
	return cfg, nil
}
