package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

func generatedFor(variants ...string) []debugconfig.GeneratedConfig {
	out := make([]debugconfig.GeneratedConfig, 0, len(variants))
	for _, v := range variants {
		out = append(out, debugconfig.GeneratedConfig{
			Config:   debugconfig.Config{debugconfig.KeyName: "Debug " + v},
			Metadata: debugconfig.Metadata{Variant: v},
		})
	}
	return out
}

func variantsOf(generated []debugconfig.GeneratedConfig) []string {
	var out []string
	for _, g := range generated {
		out = append(out, g.Metadata.Variant)
	}
	return out
}

func TestSelectVariants(t *testing.T) {
	all := generatedFor("basic", "live-watch", "attach", "swo")

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"single", []string{"basic"}, []string{"basic"}},
		{"keeps template order", []string{"swo", "basic"}, []string{"basic", "swo"}},
		{"all", []string{"attach", "all"}, []string{"basic", "live-watch", "attach", "swo"}},
		{"unknown", []string{"rtt"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := variantsOf(selectVariants(all, tt.names))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selectVariants() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTools(t *testing.T) {
	tools, err := parseTools([]string{"openocd", "gcc"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]toolchain.Tool{toolchain.ToolOpenOCD, toolchain.ToolCrossCompiler}, tools); diff != "" {
		t.Errorf("parseTools() mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseTools([]string{"jlink"}); !errors.Is(err, toolchain.ErrUnknownTool) {
		t.Errorf("parseTools(jlink) error = %v, want ErrUnknownTool", err)
	}
}

func TestCollisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.json")
	if got := collisions(path, generatedFor("basic")); got != nil {
		t.Errorf("collisions() on missing file = %v", got)
	}

	content := `{
  // existing
  "version": "0.2.0",
  "configurations": [
    {"name": "Debug attach", "type": "cortex-debug"},
    {"name": "Python", "type": "python"},
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got := collisions(path, generatedFor("basic", "attach"))
	if diff := cmp.Diff([]string{"Debug attach"}, got); diff != "" {
		t.Errorf("collisions() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeResultBox(t *testing.T) {
	merge := debugconfig.MergeResult{
		Added:    []string{"Debug basic (2)"},
		Replaced: []string{},
		Renamed:  map[string]string{"Debug basic": "Debug basic (2)"},
	}
	generated := generatedFor("basic")
	generated[0].Metadata.Confidence = 100

	box := mergeResultBox(".vscode/launch.json", merge, generated)
	want := map[string]string{
		"File":     ".vscode/launch.json",
		"Added":    "Debug basic (2)",
		"Replaced": "-",
		"Renamed":  "Debug basic → Debug basic (2)",
	}
	for _, d := range box.Details {
		if w, ok := want[d.Key]; ok && d.Value != w {
			t.Errorf("%s = %q, want %q", d.Key, d.Value, w)
		}
	}

	generated[0].Metadata.Confidence = 70
	if got := mergeResultBox("x", merge, generated).Title; got != "launch.json updated with incomplete configurations" {
		t.Errorf("title = %q", got)
	}
}

func TestFilterDevices(t *testing.T) {
	catalog, err := devices.Load()
	if err != nil {
		t.Fatal(err)
	}

	list, err := filterDevices(catalog, "f1")
	if err != nil {
		t.Fatalf("filterDevices: %v", err)
	}
	for _, d := range list {
		if d.Family != "STM32F1" && !strings.Contains(strings.ToUpper(d.Name), "F1") {
			t.Errorf("unexpected match %s (%s)", d.Name, d.Family)
		}
	}

	_, err = filterDevices(catalog, "zz9")
	if err == nil {
		t.Fatal("expected an error for a filter with no matches")
	}
	if !strings.Contains(err.Error(), "STM32F1") {
		t.Errorf("error should list known families: %v", err)
	}
}
