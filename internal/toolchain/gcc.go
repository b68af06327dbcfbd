package toolchain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GCCDetector locates the arm-none-eabi cross-compiler.
type GCCDetector struct {
	cfg     DetectorConfig
	prober  *VersionProber
	sources []Source
	logger  *zap.Logger
}

// NewGCCDetector creates a cross-compiler detector. prober may be nil, in
// which case one is created from cfg.Runner.
func NewGCCDetector(cfg DetectorConfig, prober *VersionProber) *GCCDetector {
	logger := cfg.logger().Named("gcc")
	if prober == nil {
		prober = NewVersionProber(cfg.Runner, logger)
	}
	return &GCCDetector{
		cfg:     cfg,
		prober:  prober,
		sources: cfg.sources(SettingToolchainPath, DefaultTarget+"-gcc", DefaultGCCLocations(cfg.Platform)),
		logger:  logger,
	}
}

// Tool implements Detector.
func (d *GCCDetector) Tool() Tool {
	return ToolCrossCompiler
}

// Detect implements Detector.
func (d *GCCDetector) Detect(ctx context.Context, at time.Time) DetectionResult {
	start := time.Now()

	path, source, attempts := locate(ctx, d.sources, d.logger)
	if path == "" {
		reason := fmt.Sprintf("%s not found (%s)", DefaultTarget+"-gcc", describeAttempts(attempts))
		d.logger.Info("cross-compiler not found",
			zap.Int("sources_tried", len(attempts)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return Failed(ToolCrossCompiler, reason, at)
	}

	v := d.prober.ProbeGCC(ctx, path)
	info := NewToolchainInfo(path, v)
	info.DetectedAt = at

	result := Succeeded(ToolCrossCompiler, path, source, at)
	result.Version = info.Version
	result.Info = &info

	d.logger.Info("cross-compiler detected",
		zap.String("path", path),
		zap.String("source", source),
		zap.String("version", info.Version),
		zap.String("vendor", info.Vendor),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}
