package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform describes the host operating system and how to read its
// environment. The zero value behaves like the current host.
type Platform struct {
	// GOOS is the operating system name ("linux", "darwin", "windows").
	GOOS string
	// GOARCH is the processor architecture ("amd64", "arm64").
	GOARCH string
	// Getenv reads an environment variable. Defaults to os.Getenv.
	Getenv func(string) string
	// HomeDir returns the user's home directory. Defaults to os.UserHomeDir.
	HomeDir func() (string, error)
}

// Current returns the Platform of the running process.
func Current() Platform {
	return Platform{
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Getenv:  os.Getenv,
		HomeDir: os.UserHomeDir,
	}
}

func (p Platform) goos() string {
	if p.GOOS == "" {
		return runtime.GOOS
	}
	return p.GOOS
}

func (p Platform) getenv(key string) string {
	if p.Getenv == nil {
		return os.Getenv(key)
	}
	return p.Getenv(key)
}

func (p Platform) homeDir() (string, error) {
	if p.HomeDir == nil {
		return os.UserHomeDir()
	}
	return p.HomeDir()
}

// IsWindows reports whether the platform is in the Windows family.
func (p Platform) IsWindows() bool {
	return p.goos() == "windows"
}

// IsDarwin reports whether the platform is macOS.
func (p Platform) IsDarwin() bool {
	return p.goos() == "darwin"
}

// ExecutableSuffix returns ".exe" on Windows and "" everywhere else.
func (p Platform) ExecutableSuffix() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}

// ExecutableName appends the platform executable suffix to a base name.
// A base name that already carries the suffix is returned unchanged.
func (p Platform) ExecutableName(base string) string {
	suffix := p.ExecutableSuffix()
	if suffix == "" || strings.HasSuffix(strings.ToLower(base), suffix) {
		return base
	}
	return base + suffix
}

// BuildExecutablePath joins dir with the platform-specific executable name.
func (p Platform) BuildExecutablePath(dir, base string) string {
	return filepath.Join(dir, p.ExecutableName(base))
}

// PathListSeparator returns the separator used in PATH-like variables.
func (p Platform) PathListSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// Arch returns the architecture segment used by Arm GNU Toolchain archive
// names ("x86_64", "aarch64"); the Darwin archives use "darwin-arm64".
func (p Platform) Arch() string {
	arch := p.GOARCH
	if arch == "" {
		arch = runtime.GOARCH
	}
	switch arch {
	case "amd64":
		if p.IsDarwin() {
			return "darwin-x86_64"
		}
		return "x86_64"
	case "arm64":
		if p.IsDarwin() {
			return "darwin-arm64"
		}
		return "aarch64"
	default:
		return arch
	}
}

// PathLocator returns the command used to resolve an executable through PATH.
func (p Platform) PathLocator() string {
	if p.IsWindows() {
		return "where"
	}
	return "which"
}
