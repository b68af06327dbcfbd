package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// Source names used in DetectionResult.Source.
const (
	SourceSettings  = "settings"
	SourcePath      = "path"
	SourceWellKnown = "well-known"
)

// ConfigReader reads host configuration values.
type ConfigReader interface {
	Get(key string) (string, bool)
}

// Source is one step of the discovery chain.
type Source interface {
	// Name identifies the source in results and logs.
	Name() string
	// Locate returns the normalized path of the executable, or an error
	// (usually *NotFoundError) when this source cannot provide one.
	Locate(ctx context.Context) (string, error)
}

// Attempt records the outcome of consulting one source.
type Attempt struct {
	Source string
	Path   string
	Err    error
}

// locate consults sources strictly in order and stops at the first hit.
func locate(ctx context.Context, sources []Source, logger *zap.Logger) (string, string, []Attempt) {
	attempts := make([]Attempt, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Source: src.Name(), Err: err})
			break
		}

		path, err := src.Locate(ctx)
		attempts = append(attempts, Attempt{Source: src.Name(), Path: path, Err: err})
		if err == nil && path != "" {
			logger.Debug("discovery source matched",
				zap.String("source", src.Name()),
				zap.String("path", path),
			)
			return path, src.Name(), attempts
		}

		logger.Debug("discovery source missed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
	}

	return "", "", attempts
}

// describeAttempts renders the failed attempts for DetectionResult.Error.
func describeAttempts(attempts []Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Err != nil {
			parts = append(parts, a.Err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// settingsSource reads an explicitly configured path.
type settingsSource struct {
	store ConfigReader
	key   string
	exe   string
	plat  platform.Platform
}

func (s *settingsSource) Name() string { return SourceSettings }

func (s *settingsSource) Locate(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", &NotFoundError{Source: SourceSettings, Detail: "no configuration store"}
	}

	value, ok := s.store.Get(s.key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", &NotFoundError{Source: SourceSettings, Detail: fmt.Sprintf("%s is not configured", s.key)}
	}

	for _, candidate := range s.plat.Expand(strings.TrimSpace(value)) {
		if path := resolveExecutable(candidate, s.exe, s.plat); path != "" {
			return path, nil
		}
	}

	return "", &NotFoundError{
		Source: SourceSettings,
		Detail: fmt.Sprintf("configured %s %q does not point to %s", s.key, value, s.plat.ExecutableName(s.exe)),
	}
}

// resolveExecutable accepts a file path, a directory holding the executable,
// or an installation root whose bin/ holds it.
func resolveExecutable(candidate, exe string, plat platform.Platform) string {
	candidate = platform.Normalize(candidate)
	if platform.IsValidExecutable(candidate) {
		return candidate
	}
	if !platform.IsDir(candidate) {
		return ""
	}
	for _, dir := range []string{candidate, filepath.Join(candidate, "bin")} {
		path := plat.BuildExecutablePath(dir, exe)
		if platform.IsValidExecutable(path) {
			return platform.Normalize(path)
		}
	}
	return ""
}

// pathSource resolves the executable through PATH with `which`/`where`.
type pathSource struct {
	runner Runner
	exe    string
	plat   platform.Platform
}

func (s *pathSource) Name() string { return SourcePath }

func (s *pathSource) Locate(ctx context.Context) (string, error) {
	if s.runner == nil {
		return "", &NotFoundError{Source: SourcePath, Detail: "no command runner"}
	}

	out, err := s.runner.Run(ctx, s.plat.PathLocator(), s.exe)
	if err != nil {
		return "", &NotFoundError{Source: SourcePath, Detail: fmt.Sprintf("%s not on PATH", s.exe), Err: err}
	}

	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if platform.IsValidExecutable(line) {
			return platform.Normalize(line), nil
		}
	}

	return "", &NotFoundError{Source: SourcePath, Detail: fmt.Sprintf("%s not on PATH", s.exe)}
}

// wellKnownSource probes installation directory templates. Templates may
// contain {version} and {arch} segments and environment references.
type wellKnownSource struct {
	templates []string
	exe       string
	plat      platform.Platform
}

func (s *wellKnownSource) Name() string { return SourceWellKnown }

func (s *wellKnownSource) Locate(ctx context.Context) (string, error) {
	for _, tmpl := range s.templates {
		if err := ctx.Err(); err != nil {
			return "", &NotFoundError{Source: SourceWellKnown, Detail: "cancelled", Err: err}
		}
		for _, dir := range s.resolveTemplate(tmpl) {
			path := s.plat.BuildExecutablePath(dir, s.exe)
			if platform.IsValidExecutable(path) {
				return platform.Normalize(path), nil
			}
		}
	}

	return "", &NotFoundError{
		Source: SourceWellKnown,
		Detail: fmt.Sprintf("none of %d known locations contain %s", len(s.templates), s.plat.ExecutableName(s.exe)),
	}
}

// resolveTemplate expands a template into existing candidate directories,
// newest version first.
func (s *wellKnownSource) resolveTemplate(tmpl string) []string {
	var dirs []string
	for _, expanded := range s.plat.Expand(tmpl) {
		pattern := strings.ReplaceAll(expanded, "{arch}", s.plat.Arch())
		pattern = strings.ReplaceAll(pattern, "{version}", "*")

		if !strings.Contains(pattern, "*") {
			dirs = append(dirs, pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return naturalLess(matches[j], matches[i])
		})
		dirs = append(dirs, matches...)
	}
	return dirs
}

// naturalLess orders strings comparing digit runs numerically so that
// "10.3" sorts after "9.2".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			na = strings.TrimLeft(na, "0")
			nb = strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
