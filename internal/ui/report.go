package ui

import (
	"fmt"
	"strings"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
)

// DetectionResultBox summarizes detection results: success when every tool
// was found, a warning with install hints otherwise.
func DetectionResultBox(results toolchain.Results) *Result {
	var (
		hints   []string
		missing []string
	)
	for _, tool := range toolchain.AllTools {
		r, _ := results.Get(tool)
		if r.Succeeded() {
			continue
		}
		missing = append(missing, tool.DisplayName())
		switch tool {
		case toolchain.ToolOpenOCD:
			hints = append(hints, fmt.Sprintf("Install OpenOCD from %s or set %s", urls.OpenOCDDownload, toolchain.SettingOpenOCDPath))
		case toolchain.ToolCrossCompiler:
			hints = append(hints, fmt.Sprintf("Install the Arm GNU Toolchain from %s or set %s", urls.ArmToolchainDownload, toolchain.SettingToolchainPath))
		}
	}

	var r *Result
	if len(missing) == 0 {
		r = NewSuccessResult("All toolchains detected")
	} else {
		r = NewWarningResult("Missing: " + strings.Join(missing, ", "))
	}
	if !results.CompletedAt.IsZero() {
		r.AddDetail("Completed", results.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if results.CrossCompiler.Info != nil {
		r.AddDetail("Toolchain vendor", results.CrossCompiler.Info.Vendor)
	}
	if results.OpenOCD.Bridge != nil && results.OpenOCD.Bridge.ScriptsDir != "" {
		r.AddDetail("OpenOCD scripts", results.OpenOCD.Bridge.ScriptsDir)
	}
	return r.AddHints(hints...)
}

// ToolchainValidationBox summarizes a toolchain directory check.
func ToolchainValidationBox(path string, v toolchain.ValidationResult) *Result {
	if !v.IsValid {
		var hints []string
		for _, id := range v.MissingTools {
			hints = append(hints, fmt.Sprintf("Essential tool %s is missing", id))
		}
		hints = append(hints, "Point "+toolchain.SettingToolchainPath+" at the toolchain root or its bin directory")
		return NewFailureResult("Toolchain is incomplete", fmt.Errorf("%s: %s", path, strings.Join(v.Errors, "; ")), hints)
	}

	r := NewSuccessResult("Toolchain is complete").AddDetail("Root", v.RootPath)
	if v.Info != nil {
		r.AddDetail("Version", v.Info.Version).AddDetail("Vendor", v.Info.Vendor)
	}
	if len(v.MissingOptional) > 0 {
		ids := make([]string, len(v.MissingOptional))
		for i, id := range v.MissingOptional {
			ids[i] = string(id)
		}
		r.AddHints("Optional tools not found: " + strings.Join(ids, ", "))
	}
	return r
}

// ConfigValidationBox summarizes a launch configuration check.
func ConfigValidationBox(name string, report debugconfig.ValidationReport) *Result {
	if !report.IsValid {
		err := fmt.Errorf("%s", strings.Join(report.Errors, "; "))
		return NewFailureResult(fmt.Sprintf("%q is invalid", name), err, append(append([]string{}, report.Warnings...), report.Suggestions...))
	}
	var r *Result
	if len(report.Warnings) > 0 {
		r = NewWarningResult(fmt.Sprintf("%q has warnings", name))
		for _, w := range report.Warnings {
			r.AddDetail("Warning", w)
		}
	} else {
		r = NewSuccessResult(fmt.Sprintf("%q is valid", name))
	}
	return r.AddHints(report.Suggestions...)
}

// GenerationResultBox summarizes a generated configuration.
func GenerationResultBox(g debugconfig.GeneratedConfig) *Result {
	r := NewSuccessResult(g.Config.Name())
	if g.Metadata.Confidence < 100 {
		r = NewWarningResult(g.Config.Name())
	}
	r.AddDetail("Device", g.Metadata.Device).
		AddDetail("Template", g.Metadata.Template).
		AddDetail("Confidence", fmt.Sprintf("%d%%", g.Metadata.Confidence))
	if files := g.Config.ConfigFiles(); len(files) > 0 {
		r.AddDetail("OpenOCD scripts", strings.Join(files, ", "))
	}
	return r.AddHints(g.Recommendations...)
}
