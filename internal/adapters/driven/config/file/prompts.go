package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

//go:embed defaults
var defaultsFS embed.FS

// defaultPrompts maps prompt names to the built-in texts under defaults/.
var defaultPrompts = func() map[string]string {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		panic(err)
	}
	prompts := make(map[string]string)
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), promptExt)
		if !ok {
			continue
		}
		raw, err := defaultsFS.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			panic(err)
		}
		prompts[name] = strings.TrimSpace(string(raw))
	}
	return prompts
}()

// DefaultPrompt returns the built-in text for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// DefaultPromptDir is ~/.docqa/prompts.
func DefaultPromptDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompts"), nil
}

// PromptStore reads prompts from <dir>/<name>.txt. The directory is seeded
// with the built-in prompts on first Load, never by the constructor, and
// existing files are left alone. Missing or blank files fall back to the
// built-in text.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore uses dir, or DefaultPromptDir when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		d, err := DefaultPromptDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = d
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

func (s *PromptStore) Load(name string) (string, error) {
	s.ensureSeeded() //nolint:errcheck // kept in seedErr

	if p, ok := s.cached(name); ok {
		return p, nil
	}

	var text string
	err := s.seedErr
	if err == nil {
		text, err = s.read(name)
	}
	if err != nil || text == "" {
		if fallback, ok := defaultPrompts[name]; ok {
			return fallback, nil
		}
		if err == nil {
			err = errors.New("empty prompt file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.cache[name]; ok {
		return p, nil
	}
	s.cache[name] = text
	return text, nil
}

// Reload empties the cache.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) Dir() string { return s.dir }

func (s *PromptStore) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.cache[name]
	return p, ok
}

func (s *PromptStore) read(name string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// ensureSeeded runs seed once and returns its result on every call.
func (s *PromptStore) ensureSeeded() error {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })
	return s.seedErr
}

// seed copies every embedded file that is not already on disk.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		dst := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		raw, err := defaultsFS.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, raw, 0o600); err != nil {
			return fmt.Errorf("create default %s: %w", e.Name(), err)
		}
	}
	return nil
}
