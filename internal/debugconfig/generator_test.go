package debugconfig

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/version"
)

var genTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	catalog, err := devices.Load()
	if err != nil {
		t.Fatalf("devices.Load: %v", err)
	}
	g := NewGenerator(catalog, zap.NewNop()).WithPlatform(platform.Platform{GOOS: "linux"})
	g.now = func() time.Time { return genTime }
	return g
}

func detectedResults() toolchain.Results {
	r := toolchain.EmptyResults()
	r.OpenOCD = toolchain.Succeeded(toolchain.ToolOpenOCD, "/usr/bin/openocd", toolchain.SourcePath, genTime)
	gcc := toolchain.Succeeded(toolchain.ToolCrossCompiler, "/opt/gcc-arm/bin/arm-none-eabi-gcc", toolchain.SourceSettings, genTime)
	gcc.Version = "10.3.1"
	gcc.Info = &toolchain.ToolchainInfo{
		Version:  "10.3.1",
		GCCPath:  gcc.Path,
		RootPath: "/opt/gcc-arm",
		Target:   toolchain.DefaultTarget,
		Vendor:   "GNU Arm Embedded Toolchain",
	}
	r.CrossCompiler = gcc
	r.CompletedAt = genTime
	return r
}

func TestGenerateEndToEndSTM32F103(t *testing.T) {
	g := newTestGenerator(t)

	out := g.Generate("STM32F103C8", detectedResults(), nil, nil, Options{})
	cfg := out.Config

	if cfg.Device() != "STM32F103C8" {
		t.Errorf("device = %q", cfg.Device())
	}
	for _, want := range []string{"interface/stlink-v2.cfg", "target/stm32f1x.cfg"} {
		if !cfg.HasConfigFile(want) {
			t.Errorf("configFiles %v missing %s", cfg.ConfigFiles(), want)
		}
	}
	if out.Metadata.Confidence != 100 {
		t.Errorf("confidence = %d, want 100 (recommendations: %v)", out.Metadata.Confidence, out.Recommendations)
	}
	if cfg.ServerType() != ServerOpenOCD || cfg.ServerPath() != "/usr/bin/openocd" {
		t.Errorf("server = %q %q", cfg.ServerType(), cfg.ServerPath())
	}
	if got := cfg.Strings(KeyLaunchCommands); len(got) != 1 || got[0] != "adapter speed 1000" {
		t.Errorf("launch commands = %v", got)
	}
	if cfg.String(KeyToolchainPath) != "/opt/gcc-arm/bin" {
		t.Errorf("armToolchainPath = %q", cfg.String(KeyToolchainPath))
	}
	if cfg.String(KeyGDBPath) != "/opt/gcc-arm/bin/arm-none-eabi-gdb" {
		t.Errorf("gdbPath = %q", cfg.String(KeyGDBPath))
	}
	if cfg.String(KeyRunToEntryPoint) != EntryPointMain {
		t.Errorf("runToEntryPoint = %q", cfg.String(KeyRunToEntryPoint))
	}
	if out.Metadata.Family != "STM32F1" || out.Metadata.Default {
		t.Errorf("metadata = %+v", out.Metadata)
	}
	if out.Metadata.Generator != version.UserAgent() || !out.Metadata.GeneratedAt.Equal(genTime) {
		t.Errorf("metadata = %+v", out.Metadata)
	}
	if len(out.Recommendations) == 0 {
		t.Error("recommendations must never be empty")
	}
}

func TestGenerateRequiredFields(t *testing.T) {
	g := newTestGenerator(t)

	for _, device := range []string{"STM32F407VG", "FOOBAR123", ""} {
		out := g.Generate(device, toolchain.EmptyResults(), nil, nil, Options{})
		for _, key := range []string{KeyName, KeyType, KeyRequest, KeyDevice} {
			if out.Config.String(key) == "" {
				t.Errorf("device %q: field %s is empty", device, key)
			}
		}
		if out.Config.Type() != TypeCortexDebug {
			t.Errorf("type = %q", out.Config.Type())
		}
	}
}

func TestGenerateBridgeFailureRecommendation(t *testing.T) {
	g := newTestGenerator(t)
	results := detectedResults()
	results.OpenOCD = toolchain.Failed(toolchain.ToolOpenOCD, "openocd not found", genTime)

	out := g.Generate("STM32F407VG", results, nil, nil, Options{})

	found := false
	for _, r := range out.Recommendations {
		if strings.Contains(strings.ToLower(r), "debug bridge") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations %v do not mention the debug bridge", out.Recommendations)
	}
	if out.Config.Has(KeyServerType) || out.Config.Has(KeyConfigFiles) {
		t.Error("OpenOCD fields must be omitted when the bridge was not detected")
	}
	if out.Metadata.Confidence != 100-PenaltyOpenOCDMissing {
		t.Errorf("confidence = %d", out.Metadata.Confidence)
	}
}

func TestGenerateConfidencePenalties(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		name    string
		device  string
		results toolchain.Results
		hints   *ProjectHints
		want    int
	}{
		{name: "all good", device: "STM32F407VG", results: detectedResults(), want: 100},
		{name: "default template", device: "FOOBAR123", results: detectedResults(), want: 90},
		{
			name:    "low confidence hints",
			device:  "STM32F407VG",
			results: detectedResults(),
			hints:   &ProjectHints{DeviceName: "STM32F103C8", Confidence: 40},
			want:    85,
		},
		{name: "nothing detected, unknown device", device: "FOOBAR123", results: toolchain.EmptyResults(), want: 40},
		{
			name:    "everything wrong clamps at zero",
			device:  "FOOBAR123",
			results: toolchain.EmptyResults(),
			hints:   &ProjectHints{DeviceName: "FOOBAR", Confidence: 10},
			want:    25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := g.Generate(tt.device, tt.results, tt.hints, nil, Options{})
			if out.Metadata.Confidence != tt.want {
				t.Errorf("confidence = %d, want %d", out.Metadata.Confidence, tt.want)
			}
			if out.Metadata.Confidence < 0 || out.Metadata.Confidence > 100 {
				t.Errorf("confidence out of range: %d", out.Metadata.Confidence)
			}
		})
	}
}

func TestGenerateHintsOverride(t *testing.T) {
	g := newTestGenerator(t)
	hints := &ProjectHints{
		DeviceName: "STM32F103C8",
		Confidence: 90,
		Executable: "${workspaceFolder}/build/blinky.elf",
		BuildTask:  "CMake: build",
		SVDFile:    "${workspaceFolder}/STM32F103.svd",
	}

	out := g.Generate("STM32F407VG", detectedResults(), hints, nil, Options{})
	cfg := out.Config

	if cfg.Device() != "STM32F103C8" {
		t.Errorf("device = %q, want hint device", cfg.Device())
	}
	if !cfg.HasConfigFile("target/stm32f1x.cfg") {
		t.Errorf("template not resolved from hinted device: %v", cfg.ConfigFiles())
	}
	if cfg.Executable() != hints.Executable {
		t.Errorf("executable = %q", cfg.Executable())
	}
	if cfg.PreLaunchTask() != "CMake: build" {
		t.Errorf("preLaunchTask = %q", cfg.PreLaunchTask())
	}
	if cfg.SVDFile() != hints.SVDFile {
		t.Errorf("svdFile = %q", cfg.SVDFile())
	}
	if out.Metadata.Confidence != 100 {
		t.Errorf("confidence = %d", out.Metadata.Confidence)
	}
}

func TestGenerateBridgeSelection(t *testing.T) {
	g := newTestGenerator(t)
	results := detectedResults()
	results.OpenOCD.Configs = &toolchain.BridgeConfigs{
		Interfaces: []string{"stlink.cfg", "jlink.cfg"},
		Targets:    []string{"stm32f4x.cfg"},
	}

	out := g.Generate("STM32F407VG", results, nil, &BridgeSelection{Interface: "jlink.cfg"}, Options{AdapterSpeed: 8000})
	files := out.Config.ConfigFiles()
	if len(files) != 2 || files[0] != "interface/jlink.cfg" || files[1] != "target/stm32f4x.cfg" {
		t.Errorf("configFiles = %v", files)
	}
	if got := out.Config.Strings(KeyLaunchCommands); got[0] != "adapter speed 8000" {
		t.Errorf("launch commands = %v", got)
	}

	verbatim := g.Generate("STM32F407VG", results, nil, &BridgeSelection{ConfigFiles: []string{"board/st_nucleo_f4.cfg"}}, Options{})
	if files := verbatim.Config.ConfigFiles(); len(files) != 1 || files[0] != "board/st_nucleo_f4.cfg" {
		t.Errorf("verbatim configFiles = %v", files)
	}

	missing := g.Generate("STM32F407VG", results, nil, nil, Options{})
	found := false
	for _, r := range missing.Recommendations {
		if strings.Contains(r, "interface/stlink-v2-1.cfg") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing-script recommendation, got %v", missing.Recommendations)
	}
}

func TestGenerateOptionalBlocks(t *testing.T) {
	g := newTestGenerator(t)

	out := g.Generate("STM32F407VG", detectedResults(), nil, nil, Options{LiveWatch: true, SWO: true, RTT: true})
	cfg := out.Config

	if !cfg.BlockEnabled(KeyLiveWatch) || cfg.Block(KeyLiveWatch)["samplesPerSecond"] != 4 {
		t.Errorf("liveWatch = %v", cfg.Block(KeyLiveWatch))
	}
	if !cfg.BlockEnabled(KeySWOConfig) {
		t.Fatal("swoConfig missing")
	}
	if freq := cfg.Block(KeySWOConfig)["cpuFrequency"]; freq != int64(168000000) {
		t.Errorf("cpuFrequency = %v", freq)
	}
	if !cfg.BlockEnabled(KeyRTTConfig) {
		t.Error("rttConfig missing")
	}
	for _, feature := range []string{"live watch", "SWO trace", "RTT"} {
		if !strings.Contains(out.Description, feature) {
			t.Errorf("description %q does not mention %s", out.Description, feature)
		}
	}
}

func TestGenerateSWOUnsupported(t *testing.T) {
	g := newTestGenerator(t)

	out := g.Generate("STM32G071RB", detectedResults(), nil, nil, Options{SWO: true})
	if out.Config.Has(KeySWOConfig) {
		t.Error("Cortex-M0+ must not get an SWO block")
	}
	found := false
	for _, r := range out.Recommendations {
		if strings.Contains(r, "SWO trace is not available") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations = %v", out.Recommendations)
	}
}

func TestGenerateAttach(t *testing.T) {
	g := newTestGenerator(t)

	out := g.Generate("STM32F407VG", detectedResults(), nil, nil, Options{Request: RequestAttach, Variant: VariantAttach})
	if out.Config.Request() != RequestAttach {
		t.Errorf("request = %q", out.Config.Request())
	}
	if out.Config.Has(KeyRunToEntryPoint) {
		t.Error("attach must not run to entry point")
	}
	if out.Config.Name() != "Attach STM32F407VG" {
		t.Errorf("name = %q", out.Config.Name())
	}
}

func TestGenerateTemplates(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		device string
		want   []string
	}{
		{device: "STM32F407VG", want: []string{VariantBasic, VariantLiveWatch, VariantAttach, VariantSWO, VariantRTT}},
		{device: "STM32G071RB", want: []string{VariantBasic, VariantLiveWatch, VariantAttach, VariantRTT}},
	}

	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			first := g.GenerateTemplates(tt.device, detectedResults(), nil, nil)
			second := g.GenerateTemplates(tt.device, detectedResults(), nil, nil)

			if len(first) != len(tt.want) {
				t.Fatalf("got %d templates, want %d", len(first), len(tt.want))
			}
			names := map[string]bool{}
			for i, out := range first {
				if out.Metadata.Variant != tt.want[i] {
					t.Errorf("template %d variant = %q, want %q", i, out.Metadata.Variant, tt.want[i])
				}
				if second[i].Config.Name() != out.Config.Name() {
					t.Errorf("template order not stable at %d", i)
				}
				if names[out.Config.Name()] {
					t.Errorf("duplicate template name %q", out.Config.Name())
				}
				names[out.Config.Name()] = true
			}

			if got := Configs(first); len(got) != len(first) {
				t.Errorf("Configs returned %d entries", len(got))
			}
		})
	}
}
