package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/detection"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// ErrNoDevice is returned when no device was given, configured or inferred.
var ErrNoDevice = errors.New("no device specified or inferred")

// LaunchPath returns the launch.json location for a workspace.
func LaunchPath(root string) string {
	return filepath.Join(root, ".vscode", "launch.json")
}

// Stage identifies a step of an auto-configuration run.
type Stage int

const (
	StageScan Stage = iota + 1
	StageDetect
	StageGenerate
	StageWrite
)

// StageFunc is called as each stage starts (done false) and finishes
// (done true). detail is a short summary of the finished stage.
type StageFunc func(stage Stage, done bool, detail string)

// RunOptions controls an auto-configuration run.
type RunOptions struct {
	// Device overrides the configured and inferred device.
	Device string
	// Variants limits the templates written; empty writes all.
	Variants []string
	// Overwrite replaces same-named configurations instead of suffixing.
	Overwrite bool
	// ForceRedetection bypasses the detection cache.
	ForceRedetection bool
	// DryRun generates without writing launch.json.
	DryRun bool
	Bridge *debugconfig.BridgeSelection
	// OnStage observes progress. May be nil.
	OnStage StageFunc
}

// Report is the outcome of an auto-configuration run.
type Report struct {
	Scan       ScanResult                    `json:"scan"`
	Device     string                        `json:"device"`
	Results    toolchain.Results             `json:"results"`
	Generated  []debugconfig.GeneratedConfig `json:"generated"`
	Merge      debugconfig.MergeResult       `json:"merge"`
	LaunchPath string                        `json:"launchPath,omitempty"`
}

// AutoConfigurator chains scanning, detection, generation and the
// launch.json merge.
type AutoConfigurator struct {
	scanner   *Scanner
	service   *detection.Service
	generator *debugconfig.Generator
	store     toolchain.ConfigReader
	logger    *zap.Logger
}

// NewAutoConfigurator wires the pipeline. store may be nil.
func NewAutoConfigurator(scanner *Scanner, service *detection.Service, generator *debugconfig.Generator, store toolchain.ConfigReader, logger *zap.Logger) *AutoConfigurator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scanner == nil {
		scanner = NewScanner(logger)
	}
	return &AutoConfigurator{
		scanner:   scanner,
		service:   service,
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// Run configures the workspace at root.
func (a *AutoConfigurator) Run(ctx context.Context, root string, opts RunOptions) (Report, error) {
	var report Report
	stage := opts.OnStage
	if stage == nil {
		stage = func(Stage, bool, string) {}
	}

	stage(StageScan, false, "")
	scan, err := a.scanner.Scan(root)
	if err != nil {
		return report, err
	}
	report.Scan = scan

	hints := scan.Hints()
	device := opts.Device
	switch {
	case device != "":
		// An explicit device beats anything inferred
		hints.DeviceName = ""
	case scan.Device != "" && scan.Confidence > debugconfig.HintConfidenceThreshold:
		device = scan.Device
	default:
		if configured, ok := a.setting(settings.KeyDefaultDevice); ok {
			device = configured
			hints.DeviceName = ""
		} else {
			device = scan.Device
		}
	}
	if device == "" {
		return report, ErrNoDevice
	}
	report.Device = device
	stage(StageScan, true, device)

	detectOpts := detection.Options{ForceRedetection: opts.ForceRedetection}
	if v, ok := a.setting(settings.KeyCacheValidity); ok {
		if d, err := time.ParseDuration(v); err == nil {
			detectOpts.CacheValidity = d
		} else {
			a.logger.Warn("ignoring invalid cache validity setting", zap.String("value", v), zap.Error(err))
		}
	}

	stage(StageDetect, false, "")
	results, err := a.service.DetectToolchains(ctx, detectOpts)
	if err != nil {
		return report, fmt.Errorf("toolchain detection failed: %w", err)
	}
	report.Results = results
	stage(StageDetect, true, detectedSummary(results))

	stage(StageGenerate, false, "")
	generated := a.generator.GenerateTemplates(device, results, hints, opts.Bridge)
	report.Generated = filterVariants(generated, opts.Variants)
	if len(report.Generated) == 0 {
		return report, fmt.Errorf("no templates match variants %v", opts.Variants)
	}
	stage(StageGenerate, true, fmt.Sprintf("%d configurations", len(report.Generated)))

	if opts.DryRun {
		return report, nil
	}

	stage(StageWrite, false, "")
	report.LaunchPath = LaunchPath(root)
	merge, err := debugconfig.WriteLaunchFile(ctx, report.LaunchPath, debugconfig.Configs(report.Generated), opts.Overwrite, a.logger)
	if err != nil {
		return report, err
	}
	report.Merge = merge
	stage(StageWrite, true, fmt.Sprintf("%d added, %d replaced", len(merge.Added), len(merge.Replaced)))

	a.logger.Info("workspace configured",
		zap.String("root", root),
		zap.String("device", device),
		zap.Int("configurations", len(report.Generated)),
	)
	return report, nil
}

func (a *AutoConfigurator) setting(key string) (string, bool) {
	if a.store == nil {
		return "", false
	}
	return a.store.Get(key)
}

func filterVariants(generated []debugconfig.GeneratedConfig, variants []string) []debugconfig.GeneratedConfig {
	if len(variants) == 0 {
		return generated
	}
	want := make(map[string]bool, len(variants))
	for _, v := range variants {
		want[v] = true
	}
	out := make([]debugconfig.GeneratedConfig, 0, len(generated))
	for _, g := range generated {
		if want[g.Metadata.Variant] {
			out = append(out, g)
		}
	}
	return out
}

func detectedSummary(results toolchain.Results) string {
	found := 0
	for _, tool := range toolchain.AllTools {
		if r, _ := results.Get(tool); r.Succeeded() {
			found++
		}
	}
	return fmt.Sprintf("%d of %d tools found", found, len(toolchain.AllTools))
}
