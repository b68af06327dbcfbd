package debugconfig

import "fmt"

// Builder assembles a Config. Each method sets one group of fields and
// returns the builder for chaining.
//
// Example usage:
//
//	cfg := NewBuilder().
//	    Name("Debug STM32F103C8").
//	    Device("STM32F103C8").
//	    OpenOCD("/usr/bin/openocd", files, 1000).
//	    LiveWatch(4).
//	    Build()
type Builder struct {
	cfg Config
}

// NewBuilder starts a launch-request cortex-debug configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{
		KeyType:    TypeCortexDebug,
		KeyRequest: RequestLaunch,
	}}
}

// FromConfig starts a builder from a copy of an existing configuration.
func FromConfig(c Config) *Builder {
	b := &Builder{cfg: c.Clone()}
	if b.cfg == nil {
		b.cfg = Config{}
	}
	return b
}

// Name sets the configuration name shown by the debugger.
func (b *Builder) Name(name string) *Builder {
	b.cfg[KeyName] = name
	return b
}

// Request sets "launch" or "attach". Attach configurations do not run to the
// entry point.
func (b *Builder) Request(request string) *Builder {
	b.cfg[KeyRequest] = request
	if request == RequestAttach {
		delete(b.cfg, KeyRunToEntryPoint)
	}
	return b
}

// CWD sets the working directory.
func (b *Builder) CWD(dir string) *Builder {
	b.cfg[KeyCWD] = dir
	return b
}

// Executable sets the ELF image to debug.
func (b *Builder) Executable(path string) *Builder {
	b.cfg[KeyExecutable] = path
	return b
}

// Device sets the target device name.
func (b *Builder) Device(device string) *Builder {
	b.cfg[KeyDevice] = device
	return b
}

// RunToEntryPoint stops at the named function after reset.
func (b *Builder) RunToEntryPoint(fn string) *Builder {
	if fn == "" {
		delete(b.cfg, KeyRunToEntryPoint)
		return b
	}
	b.cfg[KeyRunToEntryPoint] = fn
	return b
}

// OpenOCD selects the OpenOCD server with its config files and adapter
// speed in kHz. A non-positive speed omits the launch command.
func (b *Builder) OpenOCD(serverPath string, configFiles []string, adapterSpeed int) *Builder {
	b.cfg[KeyServerType] = ServerOpenOCD
	if serverPath != "" {
		b.cfg[KeyServerPath] = serverPath
	}
	b.cfg[KeyConfigFiles] = append([]string{}, configFiles...)
	if adapterSpeed > 0 {
		b.cfg[KeyLaunchCommands] = []string{fmt.Sprintf("adapter speed %d", adapterSpeed)}
	}
	return b
}

// SearchDir adds OpenOCD script search directories.
func (b *Builder) SearchDir(dirs ...string) *Builder {
	if len(dirs) > 0 {
		b.cfg[KeySearchDir] = append([]string{}, dirs...)
	}
	return b
}

// Toolchain sets the toolchain bin directory and the GDB executable.
func (b *Builder) Toolchain(binDir, gdbPath string) *Builder {
	if binDir != "" {
		b.cfg[KeyToolchainPath] = binDir
	}
	if gdbPath != "" {
		b.cfg[KeyGDBPath] = gdbPath
	}
	return b
}

// SVD sets the peripheral description file.
func (b *Builder) SVD(path string) *Builder {
	if path != "" {
		b.cfg[KeySVDFile] = path
	}
	return b
}

// LiveWatch enables live variable sampling at the given rate.
func (b *Builder) LiveWatch(samplesPerSecond int) *Builder {
	b.cfg[KeyLiveWatch] = map[string]any{
		"enabled":          true,
		"samplesPerSecond": samplesPerSecond,
	}
	return b
}

// PreLaunchTask sets the build task run before debugging.
func (b *Builder) PreLaunchTask(task string) *Builder {
	if task != "" {
		b.cfg[KeyPreLaunchTask] = task
	}
	return b
}

// SWO enables ITM trace output over SWO with a console decoder on port 0.
func (b *Builder) SWO(cpuFrequency, swoFrequency int64) *Builder {
	b.cfg[KeySWOConfig] = map[string]any{
		"enabled":      true,
		"cpuFrequency": cpuFrequency,
		"swoFrequency": swoFrequency,
		"source":       "probe",
		"decoders": []any{
			map[string]any{"type": "console", "label": "ITM", "port": 0, "encoding": "ascii"},
		},
	}
	return b
}

// RTT enables SEGGER RTT with a console decoder on channel 0.
func (b *Builder) RTT() *Builder {
	b.cfg[KeyRTTConfig] = map[string]any{
		"enabled":     true,
		"address":     "auto",
		"clearSearch": true,
		"decoders": []any{
			map[string]any{"label": "RTT", "port": 0, "type": "console"},
		},
	}
	return b
}

// Set stores an arbitrary field.
func (b *Builder) Set(key string, value any) *Builder {
	b.cfg[key] = value
	return b
}

// Build returns a copy of the assembled configuration.
func (b *Builder) Build() Config {
	return b.cfg.Clone()
}
