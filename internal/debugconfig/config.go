package debugconfig

import "strings"

// Keys of the launch configuration fields this package manages.
const (
	KeyName            = "name"
	KeyType            = "type"
	KeyRequest         = "request"
	KeyCWD             = "cwd"
	KeyExecutable      = "executable"
	KeyDevice          = "device"
	KeyRunToEntryPoint = "runToEntryPoint"
	KeyServerType      = "servertype"
	KeyServerPath      = "serverpath"
	KeySearchDir       = "searchDir"
	KeyConfigFiles     = "configFiles"
	KeyLaunchCommands  = "openOCDLaunchCommands"
	KeyToolchainPath   = "armToolchainPath"
	KeyGDBPath         = "gdbPath"
	KeySVDFile         = "svdFile"
	KeyLiveWatch       = "liveWatch"
	KeyPreLaunchTask   = "preLaunchTask"
	KeySWOConfig       = "swoConfig"
	KeyRTTConfig       = "rttConfig"
)

// Field values.
const (
	TypeCortexDebug = "cortex-debug"
	RequestLaunch   = "launch"
	RequestAttach   = "attach"
	ServerOpenOCD   = "openocd"
	EntryPointMain  = "main"
)

// Config is a single launch configuration. Unknown keys are preserved.
type Config map[string]any

// String returns the string value of key, or "" if absent or not a string.
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Strings returns the string list at key. Lists decoded from JSON ([]any)
// are converted; non-string elements are skipped.
func (c Config) Strings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Block returns the nested object at key, or nil.
func (c Config) Block(key string) map[string]any {
	m, _ := c[key].(map[string]any)
	return m
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c Config) Name() string          { return c.String(KeyName) }
func (c Config) Type() string          { return c.String(KeyType) }
func (c Config) Request() string       { return c.String(KeyRequest) }
func (c Config) Device() string        { return c.String(KeyDevice) }
func (c Config) Executable() string    { return c.String(KeyExecutable) }
func (c Config) ServerType() string    { return c.String(KeyServerType) }
func (c Config) ServerPath() string    { return c.String(KeyServerPath) }
func (c Config) SVDFile() string       { return c.String(KeySVDFile) }
func (c Config) PreLaunchTask() string { return c.String(KeyPreLaunchTask) }
func (c Config) ConfigFiles() []string { return c.Strings(KeyConfigFiles) }

// BlockEnabled reports whether the block at key exists with enabled=true.
func (c Config) BlockEnabled(key string) bool {
	b := c.Block(key)
	if b == nil {
		return false
	}
	enabled, _ := b["enabled"].(bool)
	return enabled
}

// HasConfigFile reports whether a config file with the given suffix is
// listed, e.g. "target/stm32f1x.cfg".
func (c Config) HasConfigFile(suffix string) bool {
	for _, f := range c.ConfigFiles() {
		if f == suffix || strings.HasSuffix(f, "/"+suffix) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return Config(cloneMap(c))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Config:
		return Config(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}
