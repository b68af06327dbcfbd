package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStoreAt(
		filepath.Join(dir, "global", "config.yaml"),
		WorkspacePath(filepath.Join(dir, "project")),
		zap.NewNop(),
	)
}

func TestStoreSatisfiesConfigReader(t *testing.T) {
	var _ toolchain.ConfigReader = newTestStore(t)
}

func TestGetMissingFiles(t *testing.T) {
	s := newTestStore(t)

	if v, ok := s.Get(KeyToolchainPath); ok || v != "" {
		t.Errorf("Get() = %q, %v; want empty", v, ok)
	}
	entries, err := s.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("All() = %v, want none", entries)
	}
}

func TestUpdateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Update(ctx, KeyToolchainPath, "/opt/gcc-arm", ScopeGlobal); err != nil {
		t.Fatalf("Update(global) error = %v", err)
	}
	if v, _ := s.Get(KeyToolchainPath); v != "/opt/gcc-arm" {
		t.Errorf("Get() = %q after global update", v)
	}

	// Workspace scope wins
	if err := s.Update(ctx, KeyToolchainPath, "/work/gcc", ScopeWorkspace); err != nil {
		t.Fatalf("Update(workspace) error = %v", err)
	}
	if v, _ := s.Get(KeyToolchainPath); v != "/work/gcc" {
		t.Errorf("Get() = %q, want workspace value", v)
	}

	// Clearing the workspace value falls back to global
	if err := s.Update(ctx, KeyToolchainPath, "", ScopeWorkspace); err != nil {
		t.Fatalf("Update(clear) error = %v", err)
	}
	if v, _ := s.Get(KeyToolchainPath); v != "/opt/gcc-arm" {
		t.Errorf("Get() = %q, want global value after clear", v)
	}

	if err := s.Update(ctx, KeyOpenOCDPath, "/usr/bin/openocd", ScopeWorkspace); err != nil {
		t.Fatal(err)
	}
	entries, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Key: KeyToolchainPath, Value: "/opt/gcc-arm", Scope: ScopeGlobal},
		{Key: KeyOpenOCDPath, Value: "/usr/bin/openocd", Scope: ScopeWorkspace},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateWritesYAML(t *testing.T) {
	s := newTestStore(t)

	if err := s.Update(context.Background(), KeyDefaultDevice, "STM32F407VG", ScopeGlobal); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path(ScopeGlobal))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"version: 1", "defaultDevice: STM32F407VG"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("file missing %q:\n%s", want, data)
		}
	}
	if _, err := os.Stat(s.Path(ScopeGlobal) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()

	s := newTestStore(t)
	if err := s.Update(ctx, "colour", "blue", ScopeGlobal); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown key error = %v", err)
	}

	noWorkspace := NewFileStoreAt(filepath.Join(t.TempDir(), "config.yaml"), "", nil)
	err := noWorkspace.Update(ctx, KeyOpenOCDPath, "/usr/bin/openocd", ScopeWorkspace)
	var scopeErr *ScopeError
	if !errors.As(err, &scopeErr) || scopeErr.Scope != ScopeWorkspace {
		t.Fatalf("expected workspace ScopeError, got %v", err)
	}
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("error should wrap ErrNoWorkspace: %v", err)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "settings: [\n"},
		{name: "future version", content: "version: 7\nsettings: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			path := s.Path(ScopeGlobal)
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			if _, ok := s.Get(KeyToolchainPath); ok {
				t.Error("Get() should treat an unreadable file as empty")
			}
			if _, err := s.All(); err == nil {
				t.Error("All() should report the bad file")
			}
			err := s.Update(context.Background(), KeyToolchainPath, "/x", ScopeGlobal)
			var scopeErr *ScopeError
			if !errors.As(err, &scopeErr) {
				t.Errorf("Update() error = %v, want ScopeError", err)
			}
		})
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := newTestStore(t)
	keys := Keys()

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := s.Update(context.Background(), key, "value-"+key, ScopeGlobal); err != nil {
				t.Errorf("Update(%s) error = %v", key, err)
			}
		}(key)
	}
	wg.Wait()

	for _, key := range keys {
		if v, _ := s.Get(key); v != "value-"+key {
			t.Errorf("Get(%s) = %q; a concurrent write was lost", key, v)
		}
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "", want: ScopeGlobal},
		{in: "global", want: ScopeGlobal},
		{in: "User", want: ScopeGlobal},
		{in: "workspace", want: ScopeWorkspace},
		{in: "project", want: ScopeWorkspace},
		{in: "folder", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScope(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseScope(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
