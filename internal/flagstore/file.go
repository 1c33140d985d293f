package flagstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const flagsFile = "flags.json"

// File keeps flags in <dir>/<profile>/flags.json. Every write rewrites the
// document through a temp file and rename so a crash never leaves it torn.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(dir, profile string) (*File, error) {
	if profile == "" {
		profile = "default"
	}
	profileDir := filepath.Join(dir, profile)
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile dir: %w", err)
	}
	return &File{path: filepath.Join(profileDir, flagsFile)}, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := flags[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.load()
	if err != nil {
		return err
	}
	flags[key] = value
	return f.save(flags)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := flags[key]; !ok {
		return nil
	}
	delete(flags, key)
	return f.save(flags)
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading flags: %w", err)
	}
	flags := map[string]string{}
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("decoding flags: %w", err)
	}
	if flags == nil {
		// a document of just "null" decodes to a nil map
		flags = map[string]string{}
	}
	return flags, nil
}

func (f *File) save(flags map[string]string) error {
	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding flags: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing flags: %w", err)
	}
	return os.Rename(tmp, f.path)
}
