package toolchain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// Configuration keys read by the settings source.
const (
	SettingToolchainPath = "armToolchainPath"
	SettingOpenOCDPath   = "openocdPath"
)

// Detector locates and describes a single tool. Detect never returns an
// error: failures are reported through the result's Status and Error fields.
type Detector interface {
	Tool() Tool
	Detect(ctx context.Context, at time.Time) DetectionResult
}

// DetectorConfig holds the collaborators shared by both detectors.
type DetectorConfig struct {
	// Settings provides explicitly configured paths. May be nil.
	Settings ConfigReader
	// Runner executes PATH lookups and version probes.
	Runner Runner
	// Platform describes the host. The zero value is the current host.
	Platform platform.Platform
	// Locations overrides the well-known installation templates.
	Locations []string
	// Logger receives detection diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c DetectorConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// sources builds the ordered discovery chain for an executable.
func (c DetectorConfig) sources(settingKey, exe string, defaults []string) []Source {
	locations := c.Locations
	if locations == nil {
		locations = defaults
	}
	return []Source{
		&settingsSource{store: c.Settings, key: settingKey, exe: exe, plat: c.Platform},
		&pathSource{runner: c.Runner, exe: exe, plat: c.Platform},
		&wellKnownSource{templates: locations, exe: exe, plat: c.Platform},
	}
}
