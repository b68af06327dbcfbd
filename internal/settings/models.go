package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// documentVersion is the on-disk format version.
const documentVersion = 1

// Setting keys.
const (
	KeyToolchainPath = toolchain.SettingToolchainPath
	KeyOpenOCDPath   = toolchain.SettingOpenOCDPath
	KeyDefaultDevice = "defaultDevice"
	KeyCacheValidity = "cacheValidity"
)

// KnownKeys describes every accepted setting.
var KnownKeys = map[string]string{
	KeyToolchainPath: "ARM GCC toolchain root, bin directory or compiler path",
	KeyOpenOCDPath:   "OpenOCD executable or installation directory",
	KeyDefaultDevice: "device used when none is given or inferred",
	KeyCacheValidity: "how long detection results are reused, e.g. 5m",
}

// Keys returns the known setting keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scope selects which settings file a write goes to.
type Scope string

const (
	ScopeGlobal    Scope = "global"
	ScopeWorkspace Scope = "workspace"
)

// ParseScope converts a user-supplied scope name.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ScopeGlobal), "user":
		return ScopeGlobal, nil
	case string(ScopeWorkspace), "project":
		return ScopeWorkspace, nil
	default:
		return "", fmt.Errorf("unknown scope %q (expected global or workspace)", s)
	}
}

// Document is the YAML file layout.
type Document struct {
	Version  int               `yaml:"version"`
	Settings map[string]string `yaml:"settings"`
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:  documentVersion,
		Settings: make(map[string]string),
	}
}

// Entry is a resolved setting and the scope it came from.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Scope Scope  `json:"scope"`
}
