package debugconfig

import (
	"fmt"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// RequiredFields must be present and non-empty in every configuration.
var RequiredFields = []string{KeyName, KeyType, KeyRequest, KeyExecutable, KeyDevice}

// ValidationReport is the outcome of ValidateConfig. Errors make the
// configuration unusable; warnings and suggestions are advisory.
type ValidationReport struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ValidateConfig checks the structure of a configuration and cross-checks
// it against detection results. results may be nil to skip the cross-check.
func ValidateConfig(cfg Config, results *toolchain.Results) ValidationReport {
	report := ValidationReport{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	for _, key := range RequiredFields {
		if cfg.String(key) == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("missing required field %q", key))
		}
	}

	if t := cfg.Type(); t != "" && t != TypeCortexDebug {
		report.Errors = append(report.Errors, fmt.Sprintf("type must be %q, got %q", TypeCortexDebug, t))
	}

	if r := cfg.Request(); r != "" && r != RequestLaunch && r != RequestAttach {
		report.Errors = append(report.Errors, fmt.Sprintf("request must be %q or %q, got %q", RequestLaunch, RequestAttach, r))
	}

	if cfg.ServerType() == ServerOpenOCD {
		if len(cfg.ConfigFiles()) == 0 {
			report.Errors = append(report.Errors, "openocd server requires a non-empty configFiles list")
		}
		if results != nil && !results.OpenOCD.Succeeded() {
			report.Warnings = append(report.Warnings, "configuration uses OpenOCD but the debug bridge was not detected")
		}
		if p := cfg.ServerPath(); p != "" && !platform.IsValidExecutable(p) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("serverpath %s does not exist", p))
		}
	} else if cfg.ServerType() == "" {
		report.Suggestions = append(report.Suggestions, "set servertype to \"openocd\" to start the debug server automatically")
	}

	if cfg.Has(KeyToolchainPath) && results != nil && !results.CrossCompiler.Succeeded() {
		report.Warnings = append(report.Warnings, "configuration sets armToolchainPath but the ARM GCC toolchain was not detected")
	}

	if cfg.BlockEnabled(KeySWOConfig) {
		if freq, _ := toInt64(cfg.Block(KeySWOConfig)["cpuFrequency"]); freq <= 0 {
			report.Errors = append(report.Errors, "swoConfig requires a positive cpuFrequency")
		}
	}

	if cfg.SVDFile() == "" {
		report.Suggestions = append(report.Suggestions, "add an svdFile to inspect peripheral registers")
	}
	if cfg.Request() == RequestLaunch && !cfg.Has(KeyRunToEntryPoint) {
		report.Suggestions = append(report.Suggestions, "set runToEntryPoint to \"main\" to skip startup code")
	}
	if !cfg.Has(KeyPreLaunchTask) && cfg.Request() == RequestLaunch {
		report.Suggestions = append(report.Suggestions, "add a preLaunchTask so the firmware is rebuilt before debugging")
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

// toInt64 converts JSON or Go numeric values.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
