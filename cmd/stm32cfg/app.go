package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/cache"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/detection"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/logging"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/project"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// app holds the services shared by every command.
type app struct {
	workspace string
	logger    *zap.Logger
	platform  platform.Platform
	store     *settings.FileStore
	runner    toolchain.Runner
	prober    *toolchain.VersionProber
	service   *detection.Service
	catalog   *devices.Catalog
	generator *debugconfig.Generator
}

// newApp initializes logging and wires the services for the workspace
// selected by --workspace.
func newApp() (*app, error) {
	// Silent unless --log-level or STM32CFG_LOG_LEVEL is set
	if err := logging.Initialize(logLevel); err != nil {
		return nil, err
	}
	logger := logging.GetLogger()

	workspace, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace %q: %w", workspaceDir, err)
	}

	store, err := settings.NewFileStore(workspace, logger.Named("settings"))
	if err != nil {
		return nil, err
	}

	catalog, err := devices.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load device catalog: %w", err)
	}

	plat := platform.Current()
	runner := toolchain.NewExecRunner(commandTimeout, logger.Named("exec"))
	prober := toolchain.NewVersionProber(runner, logger.Named("probe"))

	cfg := toolchain.DetectorConfig{
		Settings: store,
		Runner:   runner,
		Platform: plat,
		Logger:   logger.Named("detect"),
	}
	detectors := []toolchain.Detector{
		toolchain.NewOpenOCDDetector(cfg),
		toolchain.NewGCCDetector(cfg, prober),
	}

	return &app{
		workspace: workspace,
		logger:    logger,
		platform:  plat,
		store:     store,
		runner:    runner,
		prober:    prober,
		service:   detection.NewService(cache.NewManager(), detectors, logger.Named("detection")),
		catalog:   catalog,
		generator: debugconfig.NewGenerator(catalog, logger.Named("generator")).WithPlatform(plat),
	}, nil
}

func (a *app) validator() *toolchain.Validator {
	return toolchain.NewValidator(a.prober, a.platform, a.logger.Named("validator"))
}

func (a *app) scanner() *project.Scanner {
	return project.NewScanner(a.logger.Named("scan")).WithMaxDepth(scanDepth)
}

func (a *app) autoConfigurator() *project.AutoConfigurator {
	return project.NewAutoConfigurator(a.scanner(), a.service, a.generator, a.store, a.logger.Named("configure"))
}

// bridgeSelection builds the OpenOCD override from --interface, --target
// and --config-file. It returns nil when none is set.
func bridgeSelection() *debugconfig.BridgeSelection {
	if bridgeInterface == "" && bridgeTarget == "" && len(bridgeConfigFiles) == 0 {
		return nil
	}
	return &debugconfig.BridgeSelection{
		Interface:   bridgeInterface,
		Target:      bridgeTarget,
		ConfigFiles: bridgeConfigFiles,
	}
}

// parseTools converts --tools values into tool identifiers.
func parseTools(names []string) ([]toolchain.Tool, error) {
	tools := make([]toolchain.Tool, 0, len(names))
	for _, name := range names {
		tool, err := toolchain.ParseTool(name)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, nil
}
