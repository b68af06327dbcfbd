package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

func TestHeaderRender(t *testing.T) {
	out := NewHeader("Toolchain detection", "stm32cfg detect",
		Param{Key: "Force", Value: "yes"},
		Param{Key: "Cache validity", Value: "5m0s"},
	).SetWidth(80).Render()

	for _, want := range []string{"TOOLCHAIN DETECTION", "stm32cfg detect", "Force:", "5m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Force:") > strings.Index(out, "Cache validity:") {
		t.Error("params must keep their order")
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Configured").AddDetail("Device", "STM32F407VG"),
			want:   []string{"SUCCESS", "Configured", "Device:", "STM32F407VG"},
		},
		{
			name:   "warning with hints",
			result: NewWarningResult("Missing: OpenOCD").AddHints("Install OpenOCD"),
			want:   []string{"WARNING", "Recommendations:", "Install OpenOCD"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Detection failed", errors.New("boom"), []string{"Retry"}),
			want:   []string{"FAILED", "Error: boom", "Troubleshooting:", "Retry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(90).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress("Scan", "Detect", "Write")

	p.UpdateStep(1, StepRunning, "")
	if p.Current != 1 || p.Percent != 0 {
		t.Errorf("current=%d percent=%v", p.Current, p.Percent)
	}
	p.UpdateStep(1, StepComplete, "STM32F407VG")
	p.UpdateStep(2, StepSkipped, "")
	if p.Percent < 0.66 || p.Percent > 0.67 {
		t.Errorf("percent = %v, want 2/3", p.Percent)
	}
	p.UpdateStep(9, StepComplete, "") // ignored

	out := p.Render()
	for _, want := range []string{"[1/3] Scan", StepMarkerComplete, "(STM32F407VG)", StepMarkerSkipped} {
		if !strings.Contains(out, want) {
			t.Errorf("progress missing %q:\n%s", want, out)
		}
	}
}

func TestStepRunner(t *testing.T) {
	var buf bytes.Buffer
	runner := NewStepRunner(StepRunnerConfig{
		Title:     "Workspace configuration",
		Command:   "stm32cfg configure",
		StepNames: []string{"Scan", "Write"},
		Output:    &buf,
	}).SetWidth(80)
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	runner.now = func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}

	err := runner.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (*Result, error) {
		onStep(1, StepRunning, "")
		onStep(1, StepComplete, "found")
		onStep(2, StepComplete, "")
		return NewSuccessResult("Configured"), nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"WORKSPACE CONFIGURATION", "[1/2] Scan", "(found)", "Configured", "Duration:", "250ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	failing := NewStepRunner(StepRunnerConfig{
		Title:           "Workspace configuration",
		Troubleshooting: []string{"Check permissions"},
		Output:          &buf,
	})
	wantErr := errors.New("disk full")
	err = failing.Run(context.Background(), func(context.Context, StepCallback) (*Result, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(buf.String(), "disk full") || !strings.Contains(buf.String(), "Check permissions") {
		t.Errorf("failure output:\n%s", buf.String())
	}
}

func TestDocumentRender(t *testing.T) {
	out := NewDocument("launch.json", "{\n  \"name\": \"Debug\"\n}\n").SetWidth(80).Render()
	for _, want := range []string{"launch.json", `"name": "Debug"`, "}"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Overwrite", []string{"Debug STM32F407VG"}, "Replace?")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Debug STM32F407VG") {
			t.Errorf("prompt missing item:\n%s", out.String())
		}
	}
}

func TestRunWithSpinnerWithoutTerminal(t *testing.T) {
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	called := false
	err := RunWithSpinner(context.Background(), "Detecting", func(context.Context) error {
		called = true
		return errors.New("done")
	})
	if !called || err == nil || err.Error() != "done" {
		t.Errorf("called=%v err=%v", called, err)
	}
}

func TestTables(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := toolchain.EmptyResults()
	results.OpenOCD = toolchain.Succeeded(toolchain.ToolOpenOCD, "/usr/bin/openocd", toolchain.SourcePath, at)
	results.OpenOCD.Version = "0.12.0"
	results.CrossCompiler = toolchain.Failed(toolchain.ToolCrossCompiler, "arm-none-eabi-gcc not found", at)

	var buf bytes.Buffer
	if err := RenderDetectionTable(&buf, results); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"OpenOCD", "0.12.0", "/usr/bin/openocd", "missing", "not found"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("detection table missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	results.CrossCompiler = toolchain.Detecting(toolchain.ToolCrossCompiler, at)
	if err := RenderDetectionTable(&buf, results); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "detecting") {
		t.Errorf("in-flight tool should render as detecting:\n%s", buf.String())
	}

	buf.Reset()
	catalog := devices.MustLoad()
	if err := RenderDevicesTable(&buf, catalog.List()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "STM32F103") || !strings.Contains(buf.String(), "stm32f1x.cfg") {
		t.Errorf("devices table:\n%s", buf.String())
	}

	buf.Reset()
	if err := RenderSettingsTable(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No settings") {
		t.Errorf("empty settings table: %q", buf.String())
	}
	buf.Reset()
	if err := RenderSettingsTable(&buf, []settings.Entry{{Key: "openocdPath", Value: "/usr/bin/openocd", Scope: settings.ScopeWorkspace}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "workspace") {
		t.Errorf("settings table:\n%s", buf.String())
	}

	buf.Reset()
	gen := []debugconfig.GeneratedConfig{{
		Config:   debugconfig.NewBuilder().Name("Debug STM32F407VG").Build(),
		Metadata: debugconfig.Metadata{Variant: debugconfig.VariantBasic, Confidence: 90},
	}}
	if err := RenderTemplatesTable(&buf, gen); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "90%") {
		t.Errorf("templates table:\n%s", buf.String())
	}
}

func TestDetectionResultBox(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := toolchain.EmptyResults()
	results.OpenOCD = toolchain.Failed(toolchain.ToolOpenOCD, "not found", at)
	results.CrossCompiler = toolchain.Succeeded(toolchain.ToolCrossCompiler, "/opt/gcc/bin/arm-none-eabi-gcc", toolchain.SourcePath, at)

	box := DetectionResultBox(results)
	if box.Type != ResultWarning {
		t.Errorf("type = %v, want warning", box.Type)
	}
	if len(box.Hints) != 1 || !strings.Contains(box.Hints[0], toolchain.SettingOpenOCDPath) {
		t.Errorf("hints = %v", box.Hints)
	}

	results.OpenOCD = toolchain.Succeeded(toolchain.ToolOpenOCD, "/usr/bin/openocd", toolchain.SourcePath, at)
	if box := DetectionResultBox(results); box.Type != ResultSuccess || len(box.Hints) != 0 {
		t.Errorf("all found: type=%v hints=%v", box.Type, box.Hints)
	}
}

func TestConfigValidationBox(t *testing.T) {
	invalid := ConfigValidationBox("x", debugconfig.ValidationReport{Errors: []string{"missing device"}, Warnings: []string{"w"}})
	if invalid.Type != ResultFailure || invalid.Error == nil {
		t.Errorf("invalid report box = %+v", invalid)
	}

	warn := ConfigValidationBox("x", debugconfig.ValidationReport{IsValid: true, Warnings: []string{"w"}, Suggestions: []string{"s"}})
	if warn.Type != ResultWarning || len(warn.Hints) != 1 {
		t.Errorf("warning report box = %+v", warn)
	}
}
