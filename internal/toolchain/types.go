package toolchain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownTool is returned when a tool identifier is not one of the
// supported tools.
var ErrUnknownTool = errors.New("unknown tool")

// Tool identifies one of the detected tools.
type Tool string

const (
	// ToolOpenOCD is the OpenOCD debug bridge.
	ToolOpenOCD Tool = "openocd"
	// ToolCrossCompiler is the arm-none-eabi GCC toolchain.
	ToolCrossCompiler Tool = "armToolchain"
)

// AllTools lists every supported tool in a stable order.
var AllTools = []Tool{ToolOpenOCD, ToolCrossCompiler}

// ParseTool converts a user-supplied identifier into a Tool.
func ParseTool(s string) (Tool, error) {
	switch s {
	case string(ToolOpenOCD):
		return ToolOpenOCD, nil
	case string(ToolCrossCompiler), "arm-toolchain", "gcc":
		return ToolCrossCompiler, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

// DisplayName returns the label shown to users for the tool.
func (t Tool) DisplayName() string {
	switch t {
	case ToolOpenOCD:
		return "OpenOCD"
	case ToolCrossCompiler:
		return "ARM GCC Toolchain"
	default:
		return string(t)
	}
}

// Valid reports whether t is a supported tool.
func (t Tool) Valid() bool {
	return t == ToolOpenOCD || t == ToolCrossCompiler
}

// DetectionStatus is the lifecycle state of a single tool detection.
type DetectionStatus string

const (
	StatusNotDetected DetectionStatus = "not_detected"
	StatusDetecting   DetectionStatus = "detecting"
	StatusSuccess     DetectionStatus = "success"
	StatusFailed      DetectionStatus = "failed"
)

// Unknown is the sentinel used for version and vendor fields that could not
// be determined.
const Unknown = "Unknown"

// ToolchainInfo describes a detected cross-compiler installation.
type ToolchainInfo struct {
	Version    string    `json:"version" yaml:"version"`
	GCCPath    string    `json:"gccPath" yaml:"gcc_path"`
	RootPath   string    `json:"rootPath" yaml:"root_path"`
	Target     string    `json:"target" yaml:"target"`
	Vendor     string    `json:"vendor" yaml:"vendor"`
	DetectedAt time.Time `json:"detectedAt" yaml:"detected_at"`
}

// BridgeInfo describes a detected OpenOCD installation.
type BridgeInfo struct {
	// VersionLine is the raw first line of `openocd --version`.
	VersionLine string `json:"versionLine,omitempty" yaml:"version_line,omitempty"`
	// ScriptsDir is the directory holding interface/ and target/ configs.
	ScriptsDir string `json:"scriptsDir,omitempty" yaml:"scripts_dir,omitempty"`
}

// BridgeConfigs lists the configuration files shipped with OpenOCD.
type BridgeConfigs struct {
	Interfaces []string `json:"interfaces" yaml:"interfaces"`
	Targets    []string `json:"targets" yaml:"targets"`
}

// DetectionResult is the outcome of detecting a single tool.
//
// Invariants: Status == StatusSuccess iff Path != "" and Error == "";
// Status == StatusFailed iff Path == "" and Error != "".
type DetectionResult struct {
	Name       string          `json:"name"`
	Status     DetectionStatus `json:"status"`
	Path       string          `json:"path,omitempty"`
	Version    string          `json:"version,omitempty"`
	Info       *ToolchainInfo  `json:"info,omitempty"`
	Bridge     *BridgeInfo     `json:"bridge,omitempty"`
	Configs    *BridgeConfigs  `json:"configs,omitempty"`
	Error      string          `json:"error,omitempty"`
	Source     string          `json:"source,omitempty"`
	DetectedAt time.Time       `json:"detectedAt"`
	FromCache  bool            `json:"fromCache"`
}

// NotDetected returns the initial result for a tool.
func NotDetected(tool Tool) DetectionResult {
	return DetectionResult{
		Name:   tool.DisplayName(),
		Status: StatusNotDetected,
	}
}

// Detecting marks a tool whose probe started at and has not finished.
func Detecting(tool Tool, at time.Time) DetectionResult {
	return DetectionResult{
		Name:       tool.DisplayName(),
		Status:     StatusDetecting,
		DetectedAt: at,
	}
}

// Succeeded builds a successful result.
func Succeeded(tool Tool, path, source string, at time.Time) DetectionResult {
	return DetectionResult{
		Name:       tool.DisplayName(),
		Status:     StatusSuccess,
		Path:       path,
		Source:     source,
		DetectedAt: at,
	}
}

// Failed builds a failed result carrying a human-readable reason.
func Failed(tool Tool, reason string, at time.Time) DetectionResult {
	if reason == "" {
		reason = "detection failed"
	}
	return DetectionResult{
		Name:       tool.DisplayName(),
		Status:     StatusFailed,
		Error:      reason,
		DetectedAt: at,
	}
}

// Succeeded reports whether the detection found the tool.
func (r DetectionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Clone returns a deep copy of the result.
func (r DetectionResult) Clone() DetectionResult {
	c := r
	if r.Info != nil {
		info := *r.Info
		c.Info = &info
	}
	if r.Bridge != nil {
		bridge := *r.Bridge
		c.Bridge = &bridge
	}
	if r.Configs != nil {
		c.Configs = &BridgeConfigs{
			Interfaces: append([]string(nil), r.Configs.Interfaces...),
			Targets:    append([]string(nil), r.Configs.Targets...),
		}
	}
	return c
}

// Results aggregates the detection results of both tools.
type Results struct {
	OpenOCD       DetectionResult `json:"openocd"`
	CrossCompiler DetectionResult `json:"armToolchain"`
	CompletedAt   time.Time       `json:"completedAt"`
}

// EmptyResults returns a baseline with both tools not detected.
func EmptyResults() Results {
	return Results{
		OpenOCD:       NotDetected(ToolOpenOCD),
		CrossCompiler: NotDetected(ToolCrossCompiler),
	}
}

// Clone returns a deep copy of the aggregate.
func (r Results) Clone() Results {
	return Results{
		OpenOCD:       r.OpenOCD.Clone(),
		CrossCompiler: r.CrossCompiler.Clone(),
		CompletedAt:   r.CompletedAt,
	}
}

// Get returns the entry for tool.
func (r Results) Get(tool Tool) (DetectionResult, error) {
	switch tool {
	case ToolOpenOCD:
		return r.OpenOCD, nil
	case ToolCrossCompiler:
		return r.CrossCompiler, nil
	default:
		return DetectionResult{}, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
}

// Set replaces the entry for tool.
func (r *Results) Set(tool Tool, result DetectionResult) error {
	switch tool {
	case ToolOpenOCD:
		r.OpenOCD = result
	case ToolCrossCompiler:
		r.CrossCompiler = result
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	return nil
}

// WithFromCache returns a copy with every populated entry flagged as served
// from cache.
func (r Results) WithFromCache() Results {
	c := r.Clone()
	if c.OpenOCD.Status != StatusNotDetected {
		c.OpenOCD.FromCache = true
	}
	if c.CrossCompiler.Status != StatusNotDetected {
		c.CrossCompiler.FromCache = true
	}
	return c
}
