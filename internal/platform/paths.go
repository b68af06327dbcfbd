package platform

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// envRefPattern matches ${VAR}, $VAR and %VAR% references.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)|%([A-Za-z_][A-Za-z0-9_]*(?:\(x86\))?)%`)

const maxExpansions = 16

// Normalize canonicalizes separators and resolves "." and ".." segments.
// The empty string is returned unchanged. Normalize is idempotent.
func Normalize(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(path))
}

// Expand resolves a leading "~" and embedded environment-variable references
// into candidate paths. A variable whose value is a path list yields one
// candidate per element, and %ProgramFiles% on Windows also yields the
// ProgramFiles(x86) location. When nothing can be expanded the original string
// is returned as the only candidate.
func (p Platform) Expand(path string) []string {
	if path == "" {
		return []string{path}
	}

	expanded := false
	candidates := []string{path}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := p.homeDir(); err == nil && home != "" {
			candidates = []string{home + path[1:]}
			expanded = true
		}
	}

	// Bounded so self-referencing values cannot loop forever.
	for i := 0; i < maxExpansions; i++ {
		next, changed := p.expandFirstRef(candidates)
		if !changed {
			break
		}
		candidates = next
		expanded = true
	}

	if !expanded {
		return []string{path}
	}

	seen := make(map[string]bool, len(candidates))
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = Normalize(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

// expandFirstRef replaces the first resolvable variable reference in each
// candidate. It reports whether any candidate changed.
func (p Platform) expandFirstRef(candidates []string) ([]string, bool) {
	changed := false
	out := make([]string, 0, len(candidates))

	for _, c := range candidates {
		loc, values := p.firstResolvable(c)
		if loc == nil {
			out = append(out, c)
			continue
		}
		changed = true
		for _, v := range values {
			out = append(out, c[:loc[0]]+v+c[loc[1]:])
		}
	}

	return out, changed
}

// firstResolvable locates the first variable reference with a non-empty value
// and returns its byte range together with the candidate values.
func (p Platform) firstResolvable(s string) ([]int, []string) {
	for _, m := range envRefPattern.FindAllStringSubmatchIndex(s, -1) {
		name := ""
		for g := 1; g <= 3; g++ {
			if m[2*g] >= 0 {
				name = s[m[2*g]:m[2*g+1]]
				break
			}
		}
		values := p.variableValues(name)
		if len(values) > 0 {
			return m[:2], values
		}
	}
	return nil, nil
}

func (p Platform) variableValues(name string) []string {
	value := p.getenv(name)
	if value == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(value, p.PathListSeparator()) {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	if p.IsWindows() && strings.EqualFold(name, "ProgramFiles") {
		if x86 := p.getenv("ProgramFiles(x86)"); x86 != "" && x86 != value {
			values = append(values, x86)
		}
	}

	return values
}

// IsValidExecutable reports whether path names an existing regular file.
// It fails closed for empty input and does not inspect permission bits.
func IsValidExecutable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
