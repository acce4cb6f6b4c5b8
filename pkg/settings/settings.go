// Package settings persists models.Settings in a YAML file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dtnitsch/chapterclip/models"
	"github.com/dtnitsch/chapterclip/pkg/storage"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file used when none is given.
const DefaultPath = "config.yaml"

// ErrUnknownKey is returned by Set for a key the settings do not have.
var ErrUnknownKey = errors.New("unknown settings key")

// Store owns the settings file. Reads return copies; every change goes
// through Update and is written to disk before it becomes visible.
type Store struct {
	path    string
	mu      sync.Mutex
	current models.Settings
	storage *storage.Storage
}

// Open loads path, filling missing keys from defaults, and writes the merged
// document back. A missing file is created.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path, storage: &storage.Storage{}}

	cfg := models.DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Decoding over the defaults keeps values for absent keys.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	if err := s.save(cfg); err != nil {
		return nil, err
	}
	s.current = cfg
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current settings.
func (s *Store) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current)
}

// Update applies fn to a copy of the settings, validates and persists the
// result, and only then makes it current.
func (s *Store) Update(fn func(*models.Settings) error) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.current)
	if err := fn(&next); err != nil {
		return clone(s.current), err
	}
	if err := Validate(next); err != nil {
		return clone(s.current), err
	}
	if err := s.save(next); err != nil {
		return clone(s.current), err
	}
	s.current = next
	return clone(next), nil
}

// Set assigns a YAML scalar or list to one top-level key, e.g.
// Set("max_budget", "15000") or Set("exclusion_keywords", "[cover, toc]").
func (s *Store) Set(key, value string) (models.Settings, error) {
	return s.Update(func(cfg *models.Settings) error {
		return SetKey(cfg, key, value)
	})
}

// Reset restores the defaults, keeping the remembered directories.
func (s *Store) Reset() (models.Settings, error) {
	return s.Update(func(cfg *models.Settings) error {
		d := models.DefaultSettings()
		d.LastEPUBDirectory = cfg.LastEPUBDirectory
		d.LastJSONDirectory = cfg.LastJSONDirectory
		d.LastExtraction = cfg.LastExtraction
		*cfg = d
		return nil
	})
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	m, _ := toMap(models.DefaultSettings())
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetKey assigns one top-level key on cfg from its YAML text.
func SetKey(cfg *models.Settings, key, value string) error {
	m, err := toMap(*cfg)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if _, ok := m[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	m[key] = v

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	next := models.Settings{}
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*cfg = next
	return nil
}

func toMap(cfg models.Settings) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return m, nil
}

// Validate checks ranges and enumerations.
func Validate(cfg models.Settings) error {
	if cfg.MaxBudget <= 0 {
		return fmt.Errorf("max_budget must be positive, got %d", cfg.MaxBudget)
	}
	if _, err := models.ParseCountMode(string(cfg.CountMode)); err != nil {
		return err
	}
	if cfg.MinChapterWords < 0 {
		return fmt.Errorf("min_chapter_words must not be negative, got %d", cfg.MinChapterWords)
	}
	if cfg.Workers < 1 || cfg.Workers > 256 {
		return fmt.Errorf("workers must be between 1 and 256, got %d", cfg.Workers)
	}
	if cfg.OutputSuffix == "" {
		return errors.New("output_suffix must not be empty")
	}
	if strings.ContainsAny(cfg.OutputSuffix, `/\`) {
		return fmt.Errorf("output_suffix must not contain path separators: %q", cfg.OutputSuffix)
	}
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("log_level must be DEBUG, INFO, WARN or ERROR, got %q", cfg.LogLevel)
	}
	return nil
}

func (s *Store) save(cfg models.Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.storage.SaveFile(s.path, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func clone(cfg models.Settings) models.Settings {
	cfg.ExclusionKeywords = append([]string(nil), cfg.ExclusionKeywords...)
	if cfg.LastExtraction != nil {
		le := *cfg.LastExtraction
		cfg.LastExtraction = &le
	}
	return cfg
}
