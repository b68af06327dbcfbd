package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/detection"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/logging"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/project"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/ui"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
)

// Command flags
var (
	workspaceDir   string
	commandTimeout time.Duration
	jsonOutput     bool
	logLevel       string

	forceDetect bool
	detectTools []string

	launchFile string

	deviceName        string
	generateVariants  []string
	configureVariants []string
	bridgeInterface   string
	bridgeTarget      string
	bridgeConfigFiles []string
	writeLaunch       bool
	overwrite         bool
	assumeYes         bool
	dryRun            bool

	scanDepth int

	settingScope string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", ".", "Workspace (project) directory")
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "exec-timeout", toolchain.DefaultCommandTimeout, "Timeout for each probed executable")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log to stderr at this level (overrides "+logging.LogLevelEnvVar+")")

	detectCmd.Flags().BoolVarP(&forceDetect, "force", "f", false, "Ignore cached results")
	detectCmd.Flags().StringSliceVar(&detectTools, "tools", nil, "Only detect these tools (openocd, armToolchain)")

	validateCmd.Flags().StringVar(&launchFile, "launch", "", "Validate configurations in this launch.json instead of a toolchain")

	for _, c := range []*cobra.Command{generateCmd, configureCmd} {
		c.Flags().StringVarP(&deviceName, "device", "d", "", "Target device, e.g. STM32F407VG")
		c.Flags().StringVar(&bridgeInterface, "interface", "", "OpenOCD interface script, e.g. jlink")
		c.Flags().StringVar(&bridgeTarget, "target", "", "OpenOCD target script, e.g. stm32f4x")
		c.Flags().StringSliceVar(&bridgeConfigFiles, "config-file", nil, "OpenOCD config files used verbatim")
		c.Flags().BoolVar(&overwrite, "overwrite", false, "Replace configurations with the same name")
		c.Flags().BoolVarP(&forceDetect, "force", "f", false, "Ignore cached detection results")
	}
	generateCmd.Flags().StringSliceVar(&generateVariants, "variant", []string{debugconfig.VariantBasic}, "Variants to generate (basic, live-watch, attach, swo, rtt, all)")
	generateCmd.Flags().BoolVar(&writeLaunch, "write", false, "Merge into .vscode/launch.json")

	configureCmd.Flags().StringSliceVar(&configureVariants, "variant", nil, "Only write these variants (default all)")
	configureCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before overwriting")
	configureCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written")

	for _, c := range []*cobra.Command{scanCmd, configureCmd} {
		c.Flags().IntVar(&scanDepth, "depth", project.DefaultMaxDepth, "Maximum directory depth to scan")
	}

	configSetCmd.Flags().StringVar(&settingScope, "scope", string(settings.ScopeWorkspace), "Settings scope (global or workspace)")
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)

	rootCmd.AddCommand(detectCmd, validateCmd, devicesCmd, generateCmd, scanCmd, configureCmd, configCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the ARM GCC toolchain and OpenOCD",
	Long: `Detect locates OpenOCD and the arm-none-eabi GCC toolchain.

Each tool is looked up in the configured settings, then on PATH, then in
well-known installation directories. Results are cached for the
cacheValidity setting (default 5m).`,
	Example: `  stm32cfg detect
  stm32cfg detect --tools openocd --force`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp()
	if err != nil {
		return err
	}
	tools, err := parseTools(detectTools)
	if err != nil {
		return err
	}

	opts := detection.Options{ForceRedetection: forceDetect, SpecificTools: tools}
	if v, ok := a.store.Get(settings.KeyCacheValidity); ok {
		if d, err := time.ParseDuration(v); err == nil {
			opts.CacheValidity = d
		}
	}

	var results toolchain.Results
	err = ui.RunWithSpinner(cmd.Context(), "Detecting toolchains", func(ctx context.Context) error {
		var err error
		results, err = a.service.DetectToolchains(ctx, opts)
		return err
	})
	if errors.Is(err, context.Canceled) && !jsonOutput {
		// Show how far detection got before the interrupt
		_ = ui.RenderDetectionTable(cmd.ErrOrStderr(), a.service.Snapshot())
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, results)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Toolchain Detection", "stm32cfg detect", ui.Param{Key: "Workspace", Value: a.workspace})
	if err := ui.RenderDetectionTable(p.Writer(), results); err != nil {
		return err
	}
	p.Newline()
	p.PrintResult(ui.DetectionResultBox(results))
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate [toolchain-path]",
	Short: "Validate a toolchain installation or launch configurations",
	Long: `Validate checks that a toolchain directory holds the essential
arm-none-eabi executables (gcc, g++, as, ld, ar). The path may be the
installation root, its bin directory or the compiler itself. Without a
path the configured or detected toolchain is used.

With --launch, every configuration in the given launch.json is checked
for required fields and cross-checked against the detected tools.`,
	Example: `  stm32cfg validate /opt/gcc-arm-none-eabi
  stm32cfg validate --launch .vscode/launch.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp()
	if err != nil {
		return err
	}
	if launchFile != "" {
		return validateLaunch(cmd, a, launchFile)
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else if v, ok := a.store.Get(settings.KeyToolchainPath); ok {
		path = v
	} else {
		results, err := a.service.DetectToolchains(cmd.Context(), detection.Options{SpecificTools: []toolchain.Tool{toolchain.ToolCrossCompiler}})
		if err != nil {
			return err
		}
		if !results.CrossCompiler.Succeeded() {
			return fmt.Errorf("no toolchain path given and none detected; see %s", urls.ArmToolchainDownload)
		}
		path = results.CrossCompiler.Path
	}

	result := a.validator().Validate(cmd.Context(), path)
	if jsonOutput {
		return printJSON(cmd, result)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Toolchain Validation", "stm32cfg validate", ui.Param{Key: "Path", Value: path})
	if err := ui.RenderExecutablesTable(p.Writer(), result); err != nil {
		return err
	}
	p.Newline()
	p.PrintResult(ui.ToolchainValidationBox(path, result))
	if !result.IsValid {
		return errors.New("toolchain validation failed")
	}
	return nil
}

func validateLaunch(cmd *cobra.Command, a *app, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	configs, err := debugconfig.ReadLaunchConfigs(content)
	if err != nil {
		return err
	}
	results, err := a.service.DetectToolchains(cmd.Context(), detection.Options{})
	if err != nil {
		return err
	}

	reports := make(map[string]debugconfig.ValidationReport, len(configs))
	invalid := 0
	for _, cfg := range configs {
		if cfg.Type() != debugconfig.TypeCortexDebug {
			continue
		}
		report := debugconfig.ValidateConfig(cfg, &results)
		reports[cfg.Name()] = report
		if !report.IsValid {
			invalid++
		}
	}

	if jsonOutput {
		if err := printJSON(cmd, reports); err != nil {
			return err
		}
	} else {
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Launch Validation", "stm32cfg validate --launch", ui.Param{Key: "File", Value: path})
		if len(reports) == 0 {
			p.Println("No cortex-debug configurations found.")
		}
		for _, cfg := range configs {
			if report, ok := reports[cfg.Name()]; ok {
				p.PrintResult(ui.ConfigValidationBox(cfg.Name(), report))
				p.Newline()
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d configurations are invalid", invalid, len(reports))
	}
	return nil
}

var devicesCmd = &cobra.Command{
	Use:   "devices [filter]",
	Short: "List supported device templates",
	Long: `Devices lists the built-in STM32 templates. A device name matches the
template whose prefix it starts with; unknown devices fall back to the
STM32F4 template. The optional filter matches family or name.`,
	Example: `  stm32cfg devices
  stm32cfg devices g0`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	catalog, err := devices.Load()
	if err != nil {
		return err
	}

	list := catalog.List()
	if len(args) == 1 {
		if list, err = filterDevices(catalog, args[0]); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(cmd, list)
	}
	return ui.RenderDevicesTable(cmd.OutOrStdout(), list)
}

// filterDevices keeps templates whose name or family contains filter.
func filterDevices(catalog *devices.Catalog, filter string) ([]devices.DeviceConfig, error) {
	needle := strings.ToUpper(filter)
	var out []devices.DeviceConfig
	for _, d := range catalog.List() {
		if strings.Contains(strings.ToUpper(d.Name), needle) || strings.Contains(strings.ToUpper(d.Family), needle) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no device templates match %q; known families: %s",
			filter, strings.Join(catalog.Families(), ", "))
	}
	return out, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Infer the device and build outputs from the workspace",
	Long: `Scan walks the workspace looking for STM32CubeMX .ioc files, startup
assembly files, -DSTM32xxx defines, SVD files and ELF outputs, and reports
the inferred device with a confidence score.`,
	Example: `  stm32cfg scan -w ~/projects/blinky`,
	Args:    cobra.NoArgs,
	RunE:    runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp()
	if err != nil {
		return err
	}
	result, err := a.scanner().Scan(a.workspace)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, result)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Project Scan", "stm32cfg scan", ui.Param{Key: "Workspace", Value: a.workspace})

	var box *ui.Result
	if result.Device == "" {
		box = ui.NewWarningResult("No device found")
	} else {
		box = ui.NewSuccessResult("Device " + result.Device)
		box.AddDetail("Confidence", fmt.Sprintf("%d%%", result.Confidence))
	}
	for _, ev := range result.Evidence {
		box.AddDetail(ev.Source, fmt.Sprintf("%s (%s, %d%%)", ev.Device, ev.File, ev.Confidence))
	}
	box.AddDetail("Build system", result.BuildSystem)
	if result.BuildTask != "" {
		box.AddDetail("Build task", result.BuildTask)
	}
	if len(result.Executables) > 0 {
		box.AddDetail("Executable", result.Executables[0])
	}
	if len(result.SVDFiles) > 0 {
		box.AddDetail("SVD", result.SVDFiles[0])
	}
	p.PrintResult(box.AddHints(result.Recommendations...))
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write stm32cfg settings",
	Long: `Settings are stored as YAML in the user configuration directory
(global scope) and in .stm32cfg.yaml in the workspace (workspace scope).
Workspace values take precedence.

Keys:
  armToolchainPath  ARM GCC toolchain root, bin directory or compiler path
  openocdPath       OpenOCD executable or installation directory
  defaultDevice     device used when none is given or inferred
  cacheValidity     how long detection results are reused, e.g. 5m`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, ok := settings.KnownKeys[args[0]]; !ok {
			return fmt.Errorf("%w: %s", settings.ErrUnknownKey, args[0])
		}
		value, ok := a.store.Get(args[0])
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a setting; an empty or missing value removes it",
	Example: `  stm32cfg config set openocdPath /usr/local/bin/openocd
  stm32cfg config set defaultDevice STM32G071RB --scope global
  stm32cfg config set defaultDevice`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		scope, err := settings.ParseScope(settingScope)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		if err := a.store.Update(cmd.Context(), args[0], value, scope); err != nil {
			return err
		}
		if value == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s from %s\n", ui.SuccessMarker, args[0], a.store.Path(scope))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s in %s\n", ui.SuccessMarker, args[0], a.store.Path(scope))
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := newApp()
		if err != nil {
			return err
		}
		entries, err := a.store.All()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, entries)
		}
		return ui.RenderSettingsTable(cmd.OutOrStdout(), entries)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// relativeToWorkspace shortens path for display when it lies inside the
// workspace.
func relativeToWorkspace(a *app, path string) string {
	rel, err := filepath.Rel(a.workspace, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
