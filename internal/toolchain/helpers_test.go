package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// fakeRunner answers commands from a handler and records every call.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	handler func(name string, args []string) (CommandOutput, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (CommandOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.handler == nil {
		return CommandOutput{ExitCode: 1}, &CommandError{Command: name, Args: args, ExitCode: 1}
	}
	return f.handler(name, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// mapSettings is an in-memory ConfigReader.
type mapSettings map[string]string

func (m mapSettings) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func linuxPlatform() platform.Platform {
	return platform.Platform{
		GOOS:    "linux",
		GOARCH:  "amd64",
		Getenv:  func(string) string { return "" },
		HomeDir: func() (string, error) { return "/home/test", nil },
	}
}

// touch creates an empty file, including parent directories.
func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// fullToolchain creates all ten executables under root and returns the root.
func fullToolchain(t *testing.T, root string) string {
	t.Helper()
	for _, exe := range ExecutablesFor(root, linuxPlatform()).All() {
		touch(t, exe.Path)
	}
	return root
}

const armBanner = "arm-none-eabi-gcc (GNU Arm Embedded Toolchain 10.3-2021.10) 10.3.1 20210824 (release)\nCopyright (C) 2020 Free Software Foundation, Inc.\n"
