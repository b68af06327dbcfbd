package debugconfig

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/version"
)

// HintConfidenceThreshold is the confidence above which a project hint's
// device name replaces the requested one.
const HintConfidenceThreshold = 50

// Confidence penalties.
const (
	PenaltyOpenOCDMissing   = 30
	PenaltyToolchainMissing = 20
	PenaltyLowConfidence    = 15
	PenaltyDefaultTemplate  = 10
)

// Variant names.
const (
	VariantBasic     = "basic"
	VariantLiveWatch = "live-watch"
	VariantAttach    = "attach"
	VariantSWO       = "swo"
	VariantRTT       = "rtt"
)

// ProjectHints carries facts inferred from the project tree.
type ProjectHints struct {
	// DeviceName is the inferred device, e.g. "STM32F407VG"
	DeviceName string `json:"deviceName,omitempty"`
	// Confidence in DeviceName, 0-100
	Confidence int `json:"confidence"`
	// Executable is the expected ELF output path
	Executable string `json:"executable,omitempty"`
	// BuildTask is the pre-launch task name
	BuildTask string `json:"buildTask,omitempty"`
	// SVDFile is an SVD file found in the project
	SVDFile string `json:"svdFile,omitempty"`
}

// BridgeSelection overrides the template's OpenOCD scripts. Interface and
// Target are script names; ConfigFiles, when set, is used verbatim.
type BridgeSelection struct {
	Interface   string
	Target      string
	ConfigFiles []string
}

// Options selects optional configuration blocks.
type Options struct {
	Name          string
	Request       string
	CWD           string
	Executable    string
	SVDFile       string
	AdapterSpeed  int
	LiveWatch     bool
	LiveWatchRate int
	SWO           bool
	SWOFrequency  int64
	RTT           bool
	Variant       string
}

var defaultOptions = Options{
	Request:       RequestLaunch,
	CWD:           "${workspaceFolder}",
	Executable:    "${workspaceFolder}/build/${workspaceFolderBasename}.elf",
	LiveWatchRate: 4,
	SWOFrequency:  2000000,
	Variant:       VariantBasic,
}

// Metadata describes how a configuration was produced.
type Metadata struct {
	Generator   string    `json:"generator"`
	GeneratedAt time.Time `json:"generatedAt"`
	Device      string    `json:"device"`
	Family      string    `json:"family"`
	Template    string    `json:"template"`
	Default     bool      `json:"defaultTemplate"`
	Confidence  int       `json:"confidence"`
	Variant     string    `json:"variant"`
}

// GeneratedConfig is a configuration plus its provenance and advice.
type GeneratedConfig struct {
	Config          Config   `json:"config"`
	Metadata        Metadata `json:"metadata"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Generator builds launch configurations from device templates and
// detection results.
type Generator struct {
	catalog *devices.Catalog
	plat    platform.Platform
	now     func() time.Time
	logger  *zap.Logger
}

// NewGenerator creates a generator backed by catalog.
func NewGenerator(catalog *devices.Catalog, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		catalog: catalog,
		plat:    platform.Current(),
		now:     time.Now,
		logger:  logger,
	}
}

// WithPlatform returns a copy of the generator using plat for executable
// names.
func (g *Generator) WithPlatform(plat platform.Platform) *Generator {
	c := *g
	c.plat = plat
	return &c
}

// Generate builds one configuration for device. hints and bridge may be nil.
func (g *Generator) Generate(device string, results toolchain.Results, hints *ProjectHints, bridge *BridgeSelection, opts Options) GeneratedConfig {
	if err := mergo.Merge(&opts, defaultOptions); err != nil {
		g.logger.Warn("failed to apply generator defaults", zap.Error(err))
	}

	var recs []string
	confidence := 100

	// Confident hints replace the requested device
	if hints != nil && hints.DeviceName != "" {
		if hints.Confidence > HintConfidenceThreshold {
			if !strings.EqualFold(hints.DeviceName, device) {
				g.logger.Debug("device overridden by project hints",
					zap.String("requested", device),
					zap.String("inferred", hints.DeviceName),
					zap.Int("confidence", hints.Confidence),
				)
			}
			device = hints.DeviceName
		} else {
			confidence -= PenaltyLowConfidence
			recs = append(recs, fmt.Sprintf(
				"Device %q was inferred with low confidence (%d%%); confirm the device name.",
				hints.DeviceName, hints.Confidence))
		}
	}
	device = strings.TrimSpace(device)

	tmpl, matched := g.catalog.Lookup(device)
	if !matched {
		tmpl = g.catalog.Default()
		confidence -= PenaltyDefaultTemplate
		recs = append(recs, fmt.Sprintf(
			"Device %q is not in the catalog; using generic %s settings (%s, %s). Verify the interface and target scripts.",
			device, tmpl.Family, tmpl.Interface, tmpl.Target))
	}
	if device == "" {
		device = tmpl.Family
	}

	name := opts.Name
	if name == "" {
		name = defaultName(device, opts)
	}

	b := NewBuilder().
		Name(name).
		CWD(opts.CWD).
		Executable(opts.Executable).
		Device(device).
		RunToEntryPoint(EntryPointMain).
		Request(opts.Request)

	var features []string

	if results.OpenOCD.Succeeded() {
		speed := tmpl.AdapterSpeed
		if opts.AdapterSpeed > 0 {
			speed = opts.AdapterSpeed
		}
		files := configFiles(tmpl, bridge)
		b.OpenOCD(results.OpenOCD.Path, files, speed)
		if results.OpenOCD.Bridge != nil && results.OpenOCD.Bridge.ScriptsDir != "" {
			b.SearchDir(results.OpenOCD.Bridge.ScriptsDir)
		}
		recs = append(recs, missingScripts(files, results.OpenOCD.Configs)...)
	} else {
		confidence -= PenaltyOpenOCDMissing
		recs = append(recs, fmt.Sprintf(
			"OpenOCD debug bridge was not detected; install it (%s) or set %s.",
			urls.OpenOCDDownload, toolchain.SettingOpenOCDPath))
	}

	if results.CrossCompiler.Succeeded() {
		b.Toolchain(g.toolchainPaths(results.CrossCompiler))
	} else {
		confidence -= PenaltyToolchainMissing
		recs = append(recs, fmt.Sprintf(
			"ARM GCC toolchain was not detected; install it (%s) or set %s.",
			urls.ArmToolchainDownload, toolchain.SettingToolchainPath))
	}

	svd := firstNonEmpty(opts.SVDFile, hintSVD(hints))
	if svd == "" && tmpl.SVDFile != "" {
		svd = "${workspaceFolder}/" + tmpl.SVDFile
		recs = append(recs, fmt.Sprintf("Place %s in the workspace for peripheral views (%s).", tmpl.SVDFile, urls.SVDRepository))
	}
	if svd != "" {
		b.SVD(svd)
		features = append(features, "peripheral view")
	}

	if opts.LiveWatch {
		b.LiveWatch(opts.LiveWatchRate)
		features = append(features, "live watch")
	}

	if hints != nil {
		if hints.Executable != "" {
			b.Executable(hints.Executable)
		}
		b.PreLaunchTask(hints.BuildTask)
	}

	if opts.SWO {
		if tmpl.SupportsSWO() {
			freq := tmpl.CPUFrequency
			if freq <= 0 {
				freq = g.catalog.CPUFrequency(tmpl.Family)
			}
			b.SWO(freq, opts.SWOFrequency)
			features = append(features, "SWO trace")
		} else {
			recs = append(recs, fmt.Sprintf("SWO trace is not available on %s; consider RTT instead.", tmpl.Core))
		}
	}

	if opts.RTT {
		if tmpl.SupportsRTT() {
			b.RTT()
			features = append(features, "RTT")
		} else {
			recs = append(recs, fmt.Sprintf("RTT requires a Cortex-M core; %s is not supported.", tmpl.Core))
		}
	}

	if opts.Request == RequestAttach {
		features = append(features, "attach without reset")
	}

	recs = append(recs, capabilityHints(tmpl, opts)...)
	recs = append(recs, "Verify the executable path matches your build output before debugging.")

	confidence = clamp(confidence, 0, 100)

	out := GeneratedConfig{
		Config: b.Build(),
		Metadata: Metadata{
			Generator:   version.UserAgent(),
			GeneratedAt: g.now(),
			Device:      device,
			Family:      tmpl.Family,
			Template:    tmpl.Prefix,
			Default:     !matched,
			Confidence:  confidence,
			Variant:     opts.Variant,
		},
		Description:     describe(device, tmpl, results, features),
		Recommendations: recs,
	}

	g.logger.Debug("generated debug configuration",
		zap.String("device", device),
		zap.String("template", tmpl.Prefix),
		zap.String("variant", opts.Variant),
		zap.Int("confidence", confidence),
	)
	return out
}

// toolchainPaths returns the toolchain bin directory and GDB path.
func (g *Generator) toolchainPaths(r toolchain.DetectionResult) (string, string) {
	root := ""
	if r.Info != nil && r.Info.RootPath != toolchain.Unknown {
		root = r.Info.RootPath
	}
	if root == "" {
		root = toolchain.RootFromCompilerPath(r.Path)
	}
	if root == toolchain.Unknown {
		return "", ""
	}
	exes := toolchain.ExecutablesFor(root, g.plat)
	return filepath.Dir(exes.GCC), exes.GDB
}

// configFiles returns the OpenOCD scripts, preferring caller overrides.
func configFiles(tmpl devices.DeviceConfig, bridge *BridgeSelection) []string {
	if bridge != nil && len(bridge.ConfigFiles) > 0 {
		return append([]string{}, bridge.ConfigFiles...)
	}
	iface, target := tmpl.Interface, tmpl.Target
	if bridge != nil {
		iface = firstNonEmpty(bridge.Interface, iface)
		target = firstNonEmpty(bridge.Target, target)
	}
	return []string{scriptPath("interface", iface), scriptPath("target", target)}
}

func scriptPath(dir, name string) string {
	if strings.HasPrefix(name, dir+"/") || filepath.IsAbs(name) {
		return name
	}
	return dir + "/" + name
}

// missingScripts warns about scripts absent from the detected installation.
func missingScripts(files []string, available *toolchain.BridgeConfigs) []string {
	if available == nil || (len(available.Interfaces) == 0 && len(available.Targets) == 0) {
		return nil
	}
	var recs []string
	for _, f := range files {
		var list []string
		switch {
		case strings.HasPrefix(f, "interface/"):
			list = available.Interfaces
		case strings.HasPrefix(f, "target/"):
			list = available.Targets
		default:
			continue
		}
		if !contains(list, filepath.Base(f)) {
			recs = append(recs, fmt.Sprintf("%s was not found in the OpenOCD scripts directory.", f))
		}
	}
	return recs
}

func capabilityHints(tmpl devices.DeviceConfig, opts Options) []string {
	var recs []string
	if tmpl.SupportsSWO() && !opts.SWO {
		recs = append(recs, fmt.Sprintf("%s supports SWO trace; generate the trace variant for printf-style output.", tmpl.Core))
	}
	if tmpl.HasFlag(devices.FlagCache) {
		recs = append(recs, "Data cache is enabled on this core; live watch may show stale values for cached memory.")
	}
	return recs
}

func describe(device string, tmpl devices.DeviceConfig, results toolchain.Results, features []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Debug configuration for %s (%s, %s)", device, tmpl.Family, tmpl.Core)
	if results.OpenOCD.Succeeded() {
		sb.WriteString(" using OpenOCD")
	} else {
		sb.WriteString(" without a detected debug bridge")
	}
	if len(features) > 0 {
		sb.WriteString(" with ")
		sb.WriteString(strings.Join(features, ", "))
	}
	return sb.String()
}

func defaultName(device string, opts Options) string {
	switch opts.Variant {
	case VariantLiveWatch:
		return fmt.Sprintf("Debug %s (Live Watch)", device)
	case VariantAttach:
		return fmt.Sprintf("Attach %s", device)
	case VariantSWO:
		return fmt.Sprintf("Debug %s (SWO)", device)
	case VariantRTT:
		return fmt.Sprintf("Debug %s (RTT)", device)
	default:
		if opts.Request == RequestAttach {
			return fmt.Sprintf("Attach %s", device)
		}
		return fmt.Sprintf("Debug %s", device)
	}
}

func hintSVD(h *ProjectHints) string {
	if h == nil {
		return ""
	}
	return h.SVDFile
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
