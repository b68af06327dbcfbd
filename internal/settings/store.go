package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	appName           = "stm32cfg"
	configFile        = "config.yaml"
	workspaceFileName = ".stm32cfg.yaml"

	// lockTimeout is the maximum time to wait for a file lock
	lockTimeout = 2 * time.Second
)

// Store reads and writes host settings.
type Store interface {
	// Get returns the effective value of key, workspace scope first
	Get(key string) (string, bool)
	// Update sets key at scope; an empty value removes it
	Update(ctx context.Context, key, value string, scope Scope) error
}

// FileStore is a Store backed by YAML files.
type FileStore struct {
	globalPath    string
	workspacePath string
	logger        *zap.Logger
}

var _ Store = (*FileStore)(nil)

// GlobalPath returns the per-user settings file location.
func GlobalPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, configFile))
}

// WorkspacePath returns the workspace settings file for dir.
func WorkspacePath(dir string) string {
	return filepath.Join(dir, workspaceFileName)
}

// NewFileStore opens the global settings file and, when workspaceDir is not
// empty, the workspace file inside it.
func NewFileStore(workspaceDir string, logger *zap.Logger) (*FileStore, error) {
	global, err := GlobalPath()
	if err != nil {
		return nil, &ScopeError{Scope: ScopeGlobal, Err: fmt.Errorf("failed to get config path: %w", err)}
	}
	workspace := ""
	if workspaceDir != "" {
		workspace = WorkspacePath(workspaceDir)
	}
	return NewFileStoreAt(global, workspace, logger), nil
}

// NewFileStoreAt uses explicit file paths. workspacePath may be empty.
func NewFileStoreAt(globalPath, workspacePath string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		globalPath:    globalPath,
		workspacePath: workspacePath,
		logger:        logger,
	}
}

// Path returns the file backing scope, or "" when the scope is unavailable.
func (s *FileStore) Path(scope Scope) string {
	if scope == ScopeWorkspace {
		return s.workspacePath
	}
	return s.globalPath
}

// Get implements Store. Unreadable files are logged and treated as empty.
func (s *FileStore) Get(key string) (string, bool) {
	for _, scope := range []Scope{ScopeWorkspace, ScopeGlobal} {
		doc, err := s.load(scope)
		if err != nil {
			s.logger.Warn("failed to read settings", zap.String("scope", string(scope)), zap.Error(err))
			continue
		}
		if v, ok := doc.Settings[key]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// All returns every effective setting with the scope it resolves from.
func (s *FileStore) All() ([]Entry, error) {
	seen := make(map[string]bool)
	var entries []Entry
	for _, scope := range []Scope{ScopeWorkspace, ScopeGlobal} {
		doc, err := s.load(scope)
		if err != nil {
			return nil, err
		}
		for k, v := range doc.Settings {
			if seen[k] || v == "" {
				continue
			}
			seen[k] = true
			entries = append(entries, Entry{Key: k, Value: v, Scope: scope})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, key, value string, scope Scope) error {
	if _, ok := KnownKeys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	path := s.Path(scope)
	if path == "" {
		return &ScopeError{Scope: scope, Err: ErrNoWorkspace}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("failed to create config directory: %w", err)}
	}

	// Use a separate lock file for cross-platform compatibility
	fileLock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("failed to acquire lock: %w", err)}
	}
	if !locked {
		return &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("failed to acquire lock: timeout after %v", lockTimeout)}
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("failed to release settings lock", zap.String("path", path), zap.Error(err))
		}
	}()

	// Load after acquiring the lock to pick up concurrent writers
	doc, err := s.load(scope)
	if err != nil {
		return err
	}

	if value == "" {
		delete(doc.Settings, key)
	} else {
		doc.Settings[key] = value
	}

	if err := save(path, doc); err != nil {
		return &ScopeError{Scope: scope, Path: path, Err: err}
	}

	s.logger.Debug("setting updated",
		zap.String("key", key),
		zap.String("scope", string(scope)),
		zap.String("path", path),
	)
	return nil
}

// load reads one scope. A missing file yields an empty document.
func (s *FileStore) load(scope Scope) (*Document, error) {
	path := s.Path(scope)
	if path == "" {
		return NewDocument(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	doc := NewDocument()
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("failed to parse config file: %w", err)}
	}
	if doc.Version == 0 {
		doc.Version = documentVersion
	}
	if doc.Version != documentVersion {
		return nil, &ScopeError{Scope: scope, Path: path, Err: fmt.Errorf("unsupported config version: %d (expected %d)", doc.Version, documentVersion)}
	}
	if doc.Settings == nil {
		doc.Settings = make(map[string]string)
	}
	return doc, nil
}

// save writes doc to path atomically.
func save(path string, doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# stm32cfg settings
# Keys: ` + fmt.Sprint(Keys()) + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
