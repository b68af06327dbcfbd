package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// ErrUnknownTool is returned when an operation names a tool the cache does
// not hold.
var ErrUnknownTool = toolchain.ErrUnknownTool

// Manager is a single-slot, copy-in/copy-out detection cache.
type Manager struct {
	mu     sync.RWMutex
	cached *toolchain.Results
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates an empty cache.
func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the cached results and whether the cache is populated.
func (m *Manager) Get() (toolchain.Results, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached == nil {
		return toolchain.Results{}, false
	}
	return m.cached.Clone(), true
}

// Set replaces the cached results.
func (m *Manager) Set(results toolchain.Results) {
	c := results.Clone()

	m.mu.Lock()
	m.cached = &c
	m.mu.Unlock()
}

// IsValid reports whether the cache is populated and younger than maxAge.
func (m *Manager) IsValid(maxAge time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached == nil {
		return false
	}
	return m.now().Sub(m.cached.CompletedAt) < maxAge
}

// Clear discards the cached results.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// UpdateSpecific copies the named tools' entries from results into the cache,
// seeding an empty baseline if the cache is unpopulated. Entries for other
// tools are left untouched and CompletedAt is always refreshed.
func (m *Manager) UpdateSpecific(results toolchain.Results, tools []toolchain.Tool) error {
	if err := validateTools(tools); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := toolchain.EmptyResults()
	if m.cached != nil {
		next = m.cached.Clone()
	}

	for _, tool := range tools {
		entry, _ := results.Get(tool)
		_ = next.Set(tool, entry.Clone())
	}
	next.CompletedAt = m.now()

	m.cached = &next
	return nil
}

// GetSpecific returns a fresh baseline holding only the requested tools'
// cached entries. Other tools stay not detected.
func (m *Manager) GetSpecific(tools []toolchain.Tool) (toolchain.Results, error) {
	if err := validateTools(tools); err != nil {
		return toolchain.Results{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := toolchain.EmptyResults()
	if m.cached == nil {
		return out, nil
	}

	for _, tool := range tools {
		entry, _ := m.cached.Get(tool)
		_ = out.Set(tool, entry.Clone())
	}
	out.CompletedAt = m.cached.CompletedAt
	return out, nil
}

// HasEntries reports whether every named tool has a populated cache entry.
func (m *Manager) HasEntries(tools []toolchain.Tool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached == nil {
		return false
	}
	for _, tool := range tools {
		entry, err := m.cached.Get(tool)
		if err != nil || entry.Status == toolchain.StatusNotDetected {
			return false
		}
	}
	return true
}

func validateTools(tools []toolchain.Tool) error {
	for _, tool := range tools {
		if !tool.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
		}
	}
	return nil
}
