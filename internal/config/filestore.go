package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config file location
const (
	AppConfigDir   = "hb-downloader"
	ConfigFileName = "config.yaml"
)

// FileStore is a YAML-backed Preferences used where no Fyne app is running
type FileStore struct {
	path string

	mu   sync.RWMutex
	data fileData
}

type fileData struct {
	Strings map[string]string `yaml:"strings,omitempty"`
	Ints    map[string]int    `yaml:"ints,omitempty"`
	Bools   map[string]bool   `yaml:"bools,omitempty"`
}

// DefaultFileStorePath returns the config file path under the user config directory
func DefaultFileStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppConfigDir, ConfigFileName), nil
}

// LoadFileStore reads the store at path. A missing file yields an empty store.
func LoadFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &fs.data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if fs.data.Strings == nil {
		fs.data.Strings = make(map[string]string)
	}
	if fs.data.Ints == nil {
		fs.data.Ints = make(map[string]int)
	}
	if fs.data.Bools == nil {
		fs.data.Bools = make(map[string]bool)
	}
	return fs, nil
}

// Path returns the file the store saves to
func (fs *FileStore) Path() string { return fs.path }

// Save writes the store back to its file, creating parent directories
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	raw, err := yaml.Marshal(&fs.data)
	fs.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(fs.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) String(key string) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.data.Strings[key]
}

func (fs *FileStore) SetString(key string, value string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data.Strings[key] = value
}

func (fs *FileStore) Int(key string) int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.data.Ints[key]
}

func (fs *FileStore) SetInt(key string, value int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data.Ints[key] = value
}

func (fs *FileStore) BoolWithFallback(key string, fallback bool) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if v, ok := fs.data.Bools[key]; ok {
		return v
	}
	return fallback
}

func (fs *FileStore) SetBool(key string, value bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data.Bools[key] = value
}
