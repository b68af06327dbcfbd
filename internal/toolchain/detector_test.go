package toolchain

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

var detectTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestGCCDetectorFromSettings(t *testing.T) {
	root := fullToolchain(t, t.TempDir())
	gcc := ExecutablesFor(root, linuxPlatform()).GCC
	runner := bannerRunner()

	d := NewGCCDetector(DetectorConfig{
		Settings:  mapSettings{SettingToolchainPath: root},
		Runner:    runner,
		Platform:  linuxPlatform(),
		Locations: []string{},
		Logger:    zap.NewNop(),
	}, nil)

	result := d.Detect(context.Background(), detectTime)

	checkStatusInvariant(t, result)
	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Path != gcc || result.Source != SourceSettings {
		t.Errorf("Path/Source = %q/%q", result.Path, result.Source)
	}
	if result.Version != "10.3.1" {
		t.Errorf("Version = %q", result.Version)
	}
	if result.Info == nil || result.Info.RootPath != root || !result.Info.DetectedAt.Equal(detectTime) {
		t.Errorf("Info = %+v", result.Info)
	}
	for _, name := range runner.calls {
		if name == "which" {
			t.Error("PATH lookup must not run when settings succeed")
		}
	}
}

func TestGCCDetectorFallsBackToWellKnown(t *testing.T) {
	base := t.TempDir()
	gcc := touch(t, filepath.Join(base, "gcc-12.2.1", "bin", "arm-none-eabi-gcc"))
	runner := &fakeRunner{handler: func(name string, _ []string) (CommandOutput, error) {
		if name == "which" {
			return CommandOutput{ExitCode: 1}, &CommandError{Command: name, ExitCode: 1}
		}
		return CommandOutput{Stdout: "garbage text"}, nil
	}}

	d := NewGCCDetector(DetectorConfig{
		Runner:    runner,
		Platform:  linuxPlatform(),
		Locations: []string{filepath.Join(base, "gcc-{version}", "bin")},
	}, nil)

	result := d.Detect(context.Background(), detectTime)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Path != gcc || result.Source != SourceWellKnown {
		t.Errorf("Path/Source = %q/%q", result.Path, result.Source)
	}
	if result.Info.Vendor != Unknown || result.Info.Target != DefaultTarget {
		t.Errorf("expected sentinel info, got %+v", result.Info)
	}
}

func TestGCCDetectorFailureNamesEverySource(t *testing.T) {
	d := NewGCCDetector(DetectorConfig{
		Settings:  mapSettings{},
		Runner:    &fakeRunner{},
		Platform:  linuxPlatform(),
		Locations: []string{filepath.Join(t.TempDir(), "none")},
	}, nil)

	result := d.Detect(context.Background(), detectTime)

	checkStatusInvariant(t, result)
	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", result.Status)
	}
	for _, src := range []string{SourceSettings, SourcePath, SourceWellKnown} {
		if !strings.Contains(result.Error, src) {
			t.Errorf("error %q does not mention source %s", result.Error, src)
		}
	}
	if !result.DetectedAt.Equal(detectTime) {
		t.Errorf("DetectedAt = %v", result.DetectedAt)
	}
}

func TestOpenOCDDetectorEnumeratesConfigs(t *testing.T) {
	root := t.TempDir()
	openocd := touch(t, filepath.Join(root, "bin", "openocd"))
	scripts := filepath.Join(root, "share", "openocd", "scripts")
	touch(t, filepath.Join(scripts, "interface", "stlink.cfg"))
	touch(t, filepath.Join(scripts, "interface", "cmsis-dap.cfg"))
	touch(t, filepath.Join(scripts, "interface", "README"))
	touch(t, filepath.Join(scripts, "target", "stm32f4x.cfg"))

	runner := &fakeRunner{handler: func(name string, args []string) (CommandOutput, error) {
		switch name {
		case "which":
			return CommandOutput{Stdout: openocd + "\n"}, nil
		default:
			return CommandOutput{Stderr: "Open On-Chip Debugger 0.12.0\nLicensed under GNU GPL v2\n"}, nil
		}
	}}

	d := NewOpenOCDDetector(DetectorConfig{Runner: runner, Platform: linuxPlatform(), Locations: []string{}})
	result := d.Detect(context.Background(), detectTime)

	checkStatusInvariant(t, result)
	if !result.Succeeded() || result.Source != SourcePath {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Version != "0.12.0" {
		t.Errorf("Version = %q", result.Version)
	}
	if result.Bridge == nil || result.Bridge.ScriptsDir != scripts {
		t.Errorf("Bridge = %+v", result.Bridge)
	}
	wantIf := []string{"cmsis-dap.cfg", "stlink.cfg"}
	if len(result.Configs.Interfaces) != 2 || result.Configs.Interfaces[0] != wantIf[0] || result.Configs.Interfaces[1] != wantIf[1] {
		t.Errorf("Interfaces = %v, want %v", result.Configs.Interfaces, wantIf)
	}
	if len(result.Configs.Targets) != 1 || result.Configs.Targets[0] != "stm32f4x.cfg" {
		t.Errorf("Targets = %v", result.Configs.Targets)
	}
}

func TestOpenOCDDetectorMissingScriptsKeepsSuccess(t *testing.T) {
	openocd := touch(t, filepath.Join(t.TempDir(), "bin", "openocd"))

	d := NewOpenOCDDetector(DetectorConfig{
		Settings:  mapSettings{SettingOpenOCDPath: openocd},
		Runner:    &fakeRunner{},
		Platform:  linuxPlatform(),
		Locations: []string{},
	})
	result := d.Detect(context.Background(), detectTime)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Version != Unknown {
		t.Errorf("Version = %q, want Unknown", result.Version)
	}
	if result.Configs == nil || len(result.Configs.Interfaces) != 0 || len(result.Configs.Targets) != 0 {
		t.Errorf("Configs = %+v, want empty lists", result.Configs)
	}
}

func TestDetectorsReportTool(t *testing.T) {
	var detectors = []Detector{
		NewGCCDetector(DetectorConfig{}, nil),
		NewOpenOCDDetector(DetectorConfig{}),
	}
	if detectors[0].Tool() != ToolCrossCompiler || detectors[1].Tool() != ToolOpenOCD {
		t.Error("detectors report the wrong tool")
	}
}
