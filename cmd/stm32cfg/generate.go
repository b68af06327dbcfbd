package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/detection"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/project"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/ui"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
)

const variantAll = "all"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate cortex-debug configurations for a device",
	Long: `Generate builds cortex-debug launch configurations from the device
template and the detected toolchains. Without --write the configurations
are printed; with --write they are merged into .vscode/launch.json.

The device defaults to the defaultDevice setting.

Variants:
  basic       launch and run to main
  live-watch  launch with live variable watch
  attach      attach to a running target
  swo         launch with SWO trace (devices with ITM/SWO)
  rtt         launch with SEGGER RTT`,
	Example: `  stm32cfg generate --device STM32F103C8
  stm32cfg generate -d STM32F407VG --variant all --write
  stm32cfg generate -d STM32H743ZI --interface jlink --write`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp()
	if err != nil {
		return err
	}

	device := deviceName
	if device == "" {
		configured, ok := a.store.Get(settings.KeyDefaultDevice)
		if !ok {
			return fmt.Errorf("%w: pass --device or set %s", project.ErrNoDevice, settings.KeyDefaultDevice)
		}
		device = configured
	}

	var results toolchain.Results
	err = ui.RunWithSpinner(cmd.Context(), "Detecting toolchains", func(ctx context.Context) error {
		var err error
		results, err = a.service.DetectToolchains(ctx, detection.Options{ForceRedetection: forceDetect})
		return err
	})
	if err != nil {
		return err
	}

	generated := selectVariants(a.generator.GenerateTemplates(device, results, nil, bridgeSelection()), generateVariants)
	if len(generated) == 0 {
		return fmt.Errorf("no templates match variants %v for %s", generateVariants, device)
	}

	if jsonOutput && !writeLaunch {
		return printJSON(cmd, generated)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Debug Configuration", "stm32cfg generate",
		ui.Param{Key: "Device", Value: device},
		ui.Param{Key: "Variants", Value: strings.Join(generateVariants, ", ")},
	)

	if !writeLaunch {
		for _, g := range generated {
			body, err := json.MarshalIndent(g.Config, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode %q: %w", g.Config.Name(), err)
			}
			p.PrintDocument(g.Config.Name(), string(body))
			p.PrintResult(ui.GenerationResultBox(g))
			p.Newline()
		}
		return nil
	}

	path := project.LaunchPath(a.workspace)
	merge, err := debugconfig.WriteLaunchFile(cmd.Context(), path, debugconfig.Configs(generated), overwrite, a.logger.Named("launch"))
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, merge)
	}
	if err := ui.RenderTemplatesTable(p.Writer(), generated); err != nil {
		return err
	}
	p.Newline()
	p.PrintResult(mergeResultBox(relativeToWorkspace(a, path), merge, generated))
	return nil
}

// selectVariants keeps the generated templates whose variant is named.
func selectVariants(generated []debugconfig.GeneratedConfig, names []string) []debugconfig.GeneratedConfig {
	for _, n := range names {
		if n == variantAll {
			return generated
		}
	}
	var out []debugconfig.GeneratedConfig
	for _, g := range generated {
		for _, n := range names {
			if g.Metadata.Variant == n {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Scan the workspace and write launch.json in one step",
	Long: `Configure infers the device from the workspace, detects the toolchains,
generates every applicable template and merges them into
.vscode/launch.json.

The device is taken from --device, then a confident scan result, then the
defaultDevice setting. Existing configurations with the same name are kept
and the new ones suffixed unless --overwrite is given.`,
	Example: `  stm32cfg configure
  stm32cfg configure -w ~/projects/blinky --variant basic,attach
  stm32cfg configure --overwrite --yes`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp()
	if err != nil {
		return err
	}

	params := []ui.Param{{Key: "Workspace", Value: a.workspace}}
	if deviceName != "" {
		params = append(params, ui.Param{Key: "Device", Value: deviceName})
	}
	runner := ui.NewStepRunner(ui.StepRunnerConfig{
		Title:     "Workspace Configuration",
		Command:   "stm32cfg configure",
		Params:    params,
		StepNames: []string{"Scan project", "Detect toolchains", "Generate configurations", "Update launch.json"},
		Troubleshooting: []string{
			"Pass --device when the project has no .ioc or startup file",
			"Run 'stm32cfg detect' to see which tools are missing",
			"Install the cortex-debug extension: " + urls.CortexDebugExtension,
		},
		Output: cmd.OutOrStdout(),
	})

	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
		report, err := a.autoConfigurator().Run(ctx, a.workspace, project.RunOptions{
			Device:           deviceName,
			Variants:         configureVariants,
			ForceRedetection: forceDetect,
			DryRun:           true,
			Bridge:           bridgeSelection(),
			OnStage: func(stage project.Stage, done bool, detail string) {
				status := ui.StepRunning
				if done {
					status = ui.StepComplete
				}
				onStep(int(stage), status, detail)
			},
		})
		if err != nil {
			return nil, err
		}

		path := project.LaunchPath(a.workspace)
		if dryRun {
			onStep(int(project.StageWrite), ui.StepSkipped, "dry run")
			return configureResult(a, path, report, nil), nil
		}
		if overwrite && !assumeYes && ui.IsTerminal() {
			if replaced := collisions(path, report.Generated); len(replaced) > 0 &&
				!ui.Confirm(os.Stdin, cmd.OutOrStdout(), "These configurations will be replaced", replaced, "Continue?") {
				onStep(int(project.StageWrite), ui.StepSkipped, "cancelled")
				return ui.NewWarningResult("launch.json left unchanged"), nil
			}
		}

		onStep(int(project.StageWrite), ui.StepRunning, "")
		merge, err := debugconfig.WriteLaunchFile(ctx, path, debugconfig.Configs(report.Generated), overwrite, a.logger.Named("launch"))
		if err != nil {
			onStep(int(project.StageWrite), ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(int(project.StageWrite), ui.StepComplete, fmt.Sprintf("%d added, %d replaced", len(merge.Added), len(merge.Replaced)))
		return configureResult(a, path, report, &merge), nil
	})
}

// collisions lists generated names already present in the launch file.
func collisions(path string, generated []debugconfig.GeneratedConfig) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	existing, err := debugconfig.ReadLaunchConfigs(content)
	if err != nil {
		return nil
	}
	names := make(map[string]bool, len(existing))
	for _, cfg := range existing {
		names[cfg.Name()] = true
	}
	var out []string
	for _, g := range generated {
		if names[g.Config.Name()] {
			out = append(out, g.Config.Name())
		}
	}
	return out
}

func configureResult(a *app, path string, report project.Report, merge *debugconfig.MergeResult) *ui.Result {
	var r *ui.Result
	if merge == nil {
		r = ui.NewSuccessResult("Configurations generated (not written)")
	} else {
		r = mergeResultBox(relativeToWorkspace(a, path), *merge, report.Generated)
	}
	r.AddDetail("Device", report.Device)
	if report.Scan.Device != "" {
		r.AddDetail("Inferred", fmt.Sprintf("%s (%d%%)", report.Scan.Device, report.Scan.Confidence))
	}

	seen := make(map[string]bool)
	var hints []string
	for _, rec := range report.Scan.Recommendations {
		if !seen[rec] {
			seen[rec] = true
			hints = append(hints, rec)
		}
	}
	for _, g := range report.Generated {
		for _, rec := range g.Recommendations {
			if !seen[rec] {
				seen[rec] = true
				hints = append(hints, rec)
			}
		}
	}
	return r.AddHints(hints...)
}

func mergeResultBox(path string, merge debugconfig.MergeResult, generated []debugconfig.GeneratedConfig) *ui.Result {
	r := ui.NewSuccessResult("launch.json updated")
	for _, g := range generated {
		if g.Metadata.Confidence < 100 {
			r = ui.NewWarningResult("launch.json updated with incomplete configurations")
			break
		}
	}
	r.AddDetail("File", path).
		AddDetail("Added", joinOrDash(merge.Added)).
		AddDetail("Replaced", joinOrDash(merge.Replaced))
	renamed := make([]string, 0, len(merge.Renamed))
	for from := range merge.Renamed {
		renamed = append(renamed, from)
	}
	sort.Strings(renamed)
	for _, from := range renamed {
		r.AddDetail("Renamed", fmt.Sprintf("%s → %s", from, merge.Renamed[from]))
	}
	return r
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
