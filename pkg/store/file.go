package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// FileStore stores each line as an indented JSON file named <id>.json.
// Writes go to a temporary file first and are renamed into place.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/subway/lines/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "subway", "lines")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the base directory for line files.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) linePath(id line.LineID) (string, error) {
	name := string(id)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", line.ErrInvalidLineID, name)
	}
	return filepath.Join(s.baseDir, name+".json"), nil
}

func (s *FileStore) Get(_ context.Context, id line.LineID) (*line.Line, error) {
	path, err := s.linePath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readLineFile(path)
}

func readLineFile(path string) (*line.Line, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read line file: %w", err)
	}
	var snap snapshot.Line
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return snap.ToLine()
}

func (s *FileStore) Put(_ context.Context, l *line.Line) error {
	path, err := s.linePath(l.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot.FromLine(l), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write line file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write line file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id line.LineID) error {
	path, err := s.linePath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove line file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]*line.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var out []*line.Line
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		l, err := readLineFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	slices.SortFunc(out, byID)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
