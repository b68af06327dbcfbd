package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestExecutableSuffix(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", ".exe"},
		{"linux", ""},
		{"darwin", ""},
	}

	for _, tt := range tests {
		p := Platform{GOOS: tt.goos}
		if got := p.ExecutableSuffix(); got != tt.want {
			t.Errorf("ExecutableSuffix(%s) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}

func TestExecutableName(t *testing.T) {
	win := Platform{GOOS: "windows"}
	if got := win.ExecutableName("openocd"); got != "openocd.exe" {
		t.Errorf("expected openocd.exe, got %s", got)
	}
	if got := win.ExecutableName("openocd.EXE"); got != "openocd.EXE" {
		t.Errorf("expected suffix not to be doubled, got %s", got)
	}

	linux := Platform{GOOS: "linux"}
	if got := linux.ExecutableName("openocd"); got != "openocd" {
		t.Errorf("expected openocd, got %s", got)
	}
}

func TestBuildExecutablePath(t *testing.T) {
	linux := Platform{GOOS: "linux"}
	got := linux.BuildExecutablePath("/opt/arm/bin", "arm-none-eabi-gcc")
	want := filepath.Join("/opt/arm/bin", "arm-none-eabi-gcc")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	win := Platform{GOOS: "windows"}
	if got := win.BuildExecutablePath("/opt/arm/bin", "arm-none-eabi-gcc"); !strings.HasSuffix(got, "arm-none-eabi-gcc.exe") {
		t.Errorf("expected .exe suffix, got %s", got)
	}
}

func TestArch(t *testing.T) {
	tests := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "x86_64"},
		{"linux", "arm64", "aarch64"},
		{"darwin", "arm64", "darwin-arm64"},
		{"windows", "386", "386"},
	}

	for _, tt := range tests {
		p := Platform{GOOS: tt.goos, GOARCH: tt.goarch}
		if got := p.Arch(); got != tt.want {
			t.Errorf("Arch(%s/%s) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestPathLocator(t *testing.T) {
	if got := (Platform{GOOS: "windows"}).PathLocator(); got != "where" {
		t.Errorf("expected where, got %s", got)
	}
	if got := (Platform{GOOS: "linux"}).PathLocator(); got != "which" {
		t.Errorf("expected which, got %s", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		".",
		"/usr/bin/../bin/./openocd",
		"relative/./path/../file",
		"/opt//gcc-arm-none-eabi///bin/",
		"../../up",
		"a/b/c/../../../..",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}

	if got := Normalize("/usr/bin/../bin/./openocd"); got != filepath.FromSlash("/usr/bin/openocd") {
		t.Errorf("unexpected normalized path %q", got)
	}
	if got := Normalize(""); got != "" {
		t.Errorf("expected empty path to stay empty, got %q", got)
	}
}

func TestExpand(t *testing.T) {
	p := Platform{
		GOOS: "linux",
		Getenv: fakeEnv(map[string]string{
			"ARM_HOME":  "/opt/arm",
			"TOOL_DIRS": "/opt/a:/opt/b",
		}),
		HomeDir: func() (string, error) { return "/home/dev", nil },
	}

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "no expansion",
			in:   "/usr/bin/openocd",
			want: []string{"/usr/bin/openocd"},
		},
		{
			name: "home shorthand",
			in:   "~/.local/bin/openocd",
			want: []string{"/home/dev/.local/bin/openocd"},
		},
		{
			name: "braced variable",
			in:   "${ARM_HOME}/bin/arm-none-eabi-gcc",
			want: []string{"/opt/arm/bin/arm-none-eabi-gcc"},
		},
		{
			name: "bare variable",
			in:   "$ARM_HOME/bin",
			want: []string{"/opt/arm/bin"},
		},
		{
			name: "path list variable",
			in:   "$TOOL_DIRS/bin",
			want: []string{"/opt/a/bin", "/opt/b/bin"},
		},
		{
			name: "unset variable leaves original",
			in:   "$MISSING/bin",
			want: []string{"$MISSING/bin"},
		},
		{
			name: "empty",
			in:   "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Expand(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Expand(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != filepath.FromSlash(tt.want[i]) {
					t.Errorf("Expand(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandWindowsProgramFiles(t *testing.T) {
	p := Platform{
		GOOS: "windows",
		Getenv: fakeEnv(map[string]string{
			"ProgramFiles":      `C:\Program Files`,
			"ProgramFiles(x86)": `C:\Program Files (x86)`,
		}),
	}

	got := p.Expand(`%ProgramFiles%\OpenOCD\bin\openocd.exe`)
	if len(got) != 2 {
		t.Fatalf("expected two candidates, got %v", got)
	}
	if !strings.HasPrefix(got[0], `C:\Program Files\`) {
		t.Errorf("unexpected first candidate %q", got[0])
	}
	if !strings.HasPrefix(got[1], `C:\Program Files (x86)\`) {
		t.Errorf("unexpected second candidate %q", got[1])
	}
}

func TestExpandSelfReferenceTerminates(t *testing.T) {
	p := Platform{
		GOOS:   "linux",
		Getenv: fakeEnv(map[string]string{"LOOP": "$LOOP"}),
	}

	got := p.Expand("$LOOP/bin")
	if len(got) != 1 {
		t.Fatalf("expected a single candidate, got %v", got)
	}
}

func TestIsValidExecutable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "openocd")
	if err := os.WriteFile(file, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if IsValidExecutable("") {
		t.Error("expected empty path to be invalid")
	}
	if !IsValidExecutable(file) {
		t.Error("expected existing file to be valid even without execute bit")
	}
	if IsValidExecutable(dir) {
		t.Error("expected directory to be invalid")
	}
	if IsValidExecutable(filepath.Join(dir, "missing")) {
		t.Error("expected missing file to be invalid")
	}
	if !IsDir(dir) || IsDir(file) || IsDir("") {
		t.Error("IsDir returned unexpected result")
	}
}
