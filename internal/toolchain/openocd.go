package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// OpenOCDDetector locates the OpenOCD debug bridge and enumerates the
// interface and target configuration files it ships.
type OpenOCDDetector struct {
	cfg     DetectorConfig
	sources []Source
	logger  *zap.Logger
}

// NewOpenOCDDetector creates a debug bridge detector.
func NewOpenOCDDetector(cfg DetectorConfig) *OpenOCDDetector {
	return &OpenOCDDetector{
		cfg:     cfg,
		sources: cfg.sources(SettingOpenOCDPath, "openocd", DefaultOpenOCDLocations(cfg.Platform)),
		logger:  cfg.logger().Named("openocd"),
	}
}

// Tool implements Detector.
func (d *OpenOCDDetector) Tool() Tool {
	return ToolOpenOCD
}

// Detect implements Detector.
func (d *OpenOCDDetector) Detect(ctx context.Context, at time.Time) DetectionResult {
	start := time.Now()

	path, source, attempts := locate(ctx, d.sources, d.logger)
	if path == "" {
		reason := fmt.Sprintf("openocd not found (%s)", describeAttempts(attempts))
		d.logger.Info("debug bridge not found",
			zap.Int("sources_tried", len(attempts)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return Failed(ToolOpenOCD, reason, at)
	}

	result := Succeeded(ToolOpenOCD, path, source, at)
	bridge := &BridgeInfo{}
	result.Bridge = bridge

	version, banner := d.probeVersion(ctx, path)
	result.Version = version
	bridge.VersionLine = banner

	configs := &BridgeConfigs{Interfaces: []string{}, Targets: []string{}}
	result.Configs = configs

	scripts := FindScriptsDir(path)
	if scripts == "" {
		d.logger.Warn("openocd scripts directory not found",
			zap.String("path", path),
		)
	} else {
		bridge.ScriptsDir = scripts
		interfaces, ifErr := listConfigs(filepath.Join(scripts, "interface"))
		targets, tgtErr := listConfigs(filepath.Join(scripts, "target"))
		if ifErr != nil || tgtErr != nil {
			d.logger.Warn("failed to enumerate openocd configs",
				zap.String("scripts_dir", scripts),
				zap.NamedError("interface_error", ifErr),
				zap.NamedError("target_error", tgtErr),
			)
		}
		configs.Interfaces = interfaces
		configs.Targets = targets
	}

	d.logger.Info("debug bridge detected",
		zap.String("path", path),
		zap.String("source", source),
		zap.String("version", version),
		zap.Int("interfaces", len(configs.Interfaces)),
		zap.Int("targets", len(configs.Targets)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

// probeVersion runs `openocd --version`. OpenOCD prints its banner on stderr
// and older builds exit non-zero, so output is parsed even on error.
func (d *OpenOCDDetector) probeVersion(ctx context.Context, path string) (string, string) {
	if d.cfg.Runner == nil {
		return Unknown, ""
	}
	out, err := d.cfg.Runner.Run(ctx, path, "--version")
	version, banner := ParseOpenOCDVersion(out.Combined())
	if version == Unknown && err != nil {
		d.logger.Warn("openocd version probe failed",
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return version, banner
}

// FindScriptsDir returns the OpenOCD scripts directory for the executable at
// path, or "" when none of the usual layouts exist.
func FindScriptsDir(exePath string) string {
	if exePath == "" {
		return ""
	}
	dir := filepath.Dir(platform.Normalize(exePath))
	root := dir
	if filepath.Base(dir) == "bin" {
		root = filepath.Dir(dir)
	}

	candidates := []string{
		filepath.Join(root, "share", "openocd", "scripts"),
		filepath.Join(root, "scripts"),
		filepath.Join(root, "openocd", "scripts"),
		filepath.Join(dir, "scripts"),
	}
	for _, c := range candidates {
		if platform.IsDir(filepath.Join(c, "interface")) || platform.IsDir(filepath.Join(c, "target")) {
			return c
		}
	}
	return ""
}

// listConfigs returns the sorted *.cfg file names in dir. A missing directory
// yields an empty list and an error.
func listConfigs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cfg") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
