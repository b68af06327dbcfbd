package debugconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// LaunchVersion is the launch.json schema version.
const LaunchVersion = "0.2.0"

// lockTimeout bounds how long WriteLaunchFile waits for another writer.
const lockTimeout = 2 * time.Second

var emptyLaunch = []byte(`{"version": "` + LaunchVersion + `", "configurations": []}`)

// MergeResult summarizes a merge.
type MergeResult struct {
	// Added lists the names of appended configurations, after any renaming
	Added []string `json:"added"`
	// Replaced lists the names of configurations overwritten in place
	Replaced []string `json:"replaced"`
	// Renamed maps requested names to the suffixed names actually used
	Renamed map[string]string `json:"renamed,omitempty"`
}

// MergeLaunch adds configs to the launch document in existing, which may be
// empty and may contain comments and trailing commas. Existing entries are
// kept. A name collision either replaces the entry (overwrite) or appends a
// copy named "<name> (2)", "<name> (3)", and so on.
func MergeLaunch(existing []byte, configs []Config, overwrite bool) ([]byte, MergeResult, error) {
	result := MergeResult{Added: []string{}, Replaced: []string{}}

	if len(bytes.TrimSpace(existing)) == 0 {
		existing = emptyLaunch
	}

	v, err := hujson.Parse(existing)
	if err != nil {
		return nil, result, &LaunchFileError{Op: "parse", Err: err}
	}

	std := v.Clone()
	std.Standardize()
	doc := gjson.ParseBytes(std.Pack())
	if !doc.IsObject() {
		return nil, result, &LaunchFileError{Op: "parse", Err: errors.New("launch document must be a JSON object")}
	}

	var ops []string

	if !doc.Get("version").Exists() {
		ops = append(ops, fmt.Sprintf(`{ "op": "add", "path": "/version", "value": %q }`, LaunchVersion))
	}

	names := []string{}
	switch configurations := doc.Get("configurations"); {
	case !configurations.Exists():
		ops = append(ops, `{ "op": "add", "path": "/configurations", "value": [] }`)
	case !configurations.IsArray():
		return nil, result, &LaunchFileError{Op: "parse", Err: errors.New("configurations must be an array")}
	default:
		configurations.ForEach(func(_, entry gjson.Result) bool {
			names = append(names, entry.Get("name").String())
			return true
		})
	}

	for _, cfg := range configs {
		cfg = cfg.Clone()
		name := cfg.Name()

		if idx := indexOf(names, name); idx >= 0 && name != "" {
			if overwrite {
				op, err := patchOp("replace", fmt.Sprintf("/configurations/%d", idx), cfg)
				if err != nil {
					return nil, result, err
				}
				ops = append(ops, op)
				result.Replaced = append(result.Replaced, name)
				continue
			}
			unique := uniqueName(name, names)
			if result.Renamed == nil {
				result.Renamed = make(map[string]string)
			}
			result.Renamed[name] = unique
			cfg[KeyName] = unique
			name = unique
		}

		op, err := patchOp("add", "/configurations/-", cfg)
		if err != nil {
			return nil, result, err
		}
		ops = append(ops, op)
		names = append(names, name)
		result.Added = append(result.Added, name)
	}

	if len(ops) > 0 {
		patch := "[" + joinOps(ops) + "]"
		if err := v.Patch([]byte(patch)); err != nil {
			return nil, result, &LaunchFileError{Op: "patch", Err: err}
		}
	}

	formatted, err := hujson.Format(v.Pack())
	if err != nil {
		return nil, result, &LaunchFileError{Op: "format", Err: err}
	}
	return formatted, result, nil
}

// WriteLaunchFile merges configs into the launch.json at path, creating the
// file and its directory if needed. Concurrent writers are serialized with a
// lock file and the result is written atomically.
func WriteLaunchFile(ctx context.Context, path string, configs []Config, overwrite bool, logger *zap.Logger) (MergeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return MergeResult{}, &LaunchFileError{Path: path, Op: "write", Err: err}
	}

	fileLock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return MergeResult{}, &LaunchFileError{Path: path, Op: "lock", Err: err}
	}
	if !locked {
		return MergeResult{}, &LaunchFileError{Path: path, Op: "lock", Err: fmt.Errorf("timeout after %v", lockTimeout)}
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			logger.Warn("failed to release launch file lock", zap.String("path", path), zap.Error(err))
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return MergeResult{}, &LaunchFileError{Path: path, Op: "read", Err: err}
	}

	merged, result, err := MergeLaunch(content, configs, overwrite)
	if err != nil {
		var lfe *LaunchFileError
		if errors.As(err, &lfe) {
			lfe.Path = path
		}
		return result, err
	}

	// Atomic write: write to temp file, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, merged, 0o644); err != nil {
		return result, &LaunchFileError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return result, &LaunchFileError{Path: path, Op: "write", Err: err}
	}

	logger.Info("launch configurations written",
		zap.String("path", path),
		zap.Int("added", len(result.Added)),
		zap.Int("replaced", len(result.Replaced)),
	)
	return result, nil
}

// ReadLaunchConfigs returns the configurations in a launch document.
func ReadLaunchConfigs(content []byte) ([]Config, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return []Config{}, nil
	}
	std, err := hujson.Standardize(append([]byte(nil), content...))
	if err != nil {
		return nil, &LaunchFileError{Op: "parse", Err: err}
	}
	var doc struct {
		Configurations []Config `json:"configurations"`
	}
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, &LaunchFileError{Op: "parse", Err: err}
	}
	if doc.Configurations == nil {
		doc.Configurations = []Config{}
	}
	return doc.Configurations, nil
}

func patchOp(op, path string, cfg Config) (string, error) {
	value, err := json.Marshal(cfg)
	if err != nil {
		return "", &LaunchFileError{Op: "patch", Err: fmt.Errorf("failed to marshal configuration %q: %w", cfg.Name(), err)}
	}
	return fmt.Sprintf(`{ "op": %q, "path": %q, "value": %s }`, op, path, value), nil
}

func joinOps(ops []string) string {
	var b bytes.Buffer
	for i, op := range ops {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(op)
	}
	return b.String()
}

// uniqueName returns name suffixed with the lowest " (n)", n >= 2, that is
// not already taken.
func uniqueName(name string, taken []string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if indexOf(taken, candidate) < 0 {
			return candidate
		}
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
