package project

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/urls"
)

// Confidence assigned to each kind of device clue. Compiler defines name
// only the product line, so they stay below the hint threshold.
const (
	ConfidenceIOCUserName = 95
	ConfidenceIOCName     = 80
	ConfidenceStartup     = 70
	ConfidenceDefine      = 45
)

// Evidence sources.
const (
	SourceIOC     = "ioc"
	SourceStartup = "startup"
	SourceDefine  = "define"
)

// Build systems.
const (
	BuildCMake   = "cmake"
	BuildMake    = "make"
	BuildUnknown = "unknown"
)

// DefaultMaxDepth bounds how deep the scanner descends.
const DefaultMaxDepth = 5

// maxScanFileSize skips large files when looking for defines.
const maxScanFileSize = 4 << 20

var (
	// STM32F407VGTx, STM32F407V(E-G)Tx
	iocDevicePattern = regexp.MustCompile(`(?i)^STM32[A-Z0-9]+`)
	// startup_stm32f407xx.s
	startupPattern = regexp.MustCompile(`(?i)^startup_(stm32[a-z0-9]+)\.s$`)
	// -DSTM32F407xx, -DSTM32F103xB
	definePattern = regexp.MustCompile(`-DSTM32([A-Z0-9][0-9A-Za-z]*)\b`)

	skipDirs = map[string]bool{
		".git":         true,
		".svn":         true,
		"node_modules": true,
		".vscode-test": true,
	}
)

// Evidence is one device clue.
type Evidence struct {
	Source     string `json:"source"`
	File       string `json:"file"`
	Device     string `json:"device"`
	Confidence int    `json:"confidence"`
}

// ScanResult is what the scanner learned about a workspace.
type ScanResult struct {
	Root            string     `json:"root"`
	Device          string     `json:"device,omitempty"`
	Confidence      int        `json:"confidence"`
	Evidence        []Evidence `json:"evidence"`
	SVDFiles        []string   `json:"svdFiles"`
	Executables     []string   `json:"executables"`
	BuildSystem     string     `json:"buildSystem"`
	BuildTask       string     `json:"buildTask,omitempty"`
	Recommendations []string   `json:"recommendations"`
}

// Hints converts the scan into generator hints. Paths are expressed
// relative to ${workspaceFolder}.
func (r ScanResult) Hints() *debugconfig.ProjectHints {
	h := &debugconfig.ProjectHints{
		DeviceName: r.Device,
		Confidence: r.Confidence,
		BuildTask:  r.BuildTask,
	}
	if len(r.Executables) > 0 {
		h.Executable = workspaceRelative(r.Executables[0])
	}
	if len(r.SVDFiles) > 0 {
		h.SVDFile = workspaceRelative(r.SVDFiles[0])
	}
	return h
}

func workspaceRelative(rel string) string {
	return "${workspaceFolder}/" + filepath.ToSlash(rel)
}

// Scanner walks a workspace looking for device and build clues.
type Scanner struct {
	maxDepth int
	logger   *zap.Logger
}

// NewScanner creates a scanner.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{maxDepth: DefaultMaxDepth, logger: logger}
}

// WithMaxDepth returns a copy limited to depth directory levels below root.
func (s *Scanner) WithMaxDepth(depth int) *Scanner {
	c := *s
	c.maxDepth = depth
	return &c
}

// Scan inspects root. Unreadable files are skipped; only a missing or
// non-directory root is an error.
func (s *Scanner) Scan(root string) (ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return ScanResult{}, fmt.Errorf("failed to scan %s: not a directory", root)
	}

	result := ScanResult{
		Root:            root,
		Evidence:        []Evidence{},
		SVDFiles:        []string{},
		Executables:     []string{},
		BuildSystem:     BuildUnknown,
		Recommendations: []string{},
	}

	var defineFiles []string
	hasCMake, hasMake := false, false

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || depth(rel) > s.maxDepth) {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		lower := strings.ToLower(name)
		switch {
		case strings.HasSuffix(lower, ".ioc"):
			result.Evidence = append(result.Evidence, s.scanIOC(path, rel)...)
		case startupPattern.MatchString(name):
			m := startupPattern.FindStringSubmatch(name)
			result.Evidence = append(result.Evidence, Evidence{
				Source:     SourceStartup,
				File:       rel,
				Device:     trimPartWildcard(m[1]),
				Confidence: ConfidenceStartup,
			})
		case strings.HasSuffix(lower, ".svd"):
			result.SVDFiles = append(result.SVDFiles, rel)
		case strings.HasSuffix(lower, ".elf"):
			result.Executables = append(result.Executables, rel)
		case name == "CMakeLists.txt":
			if rel == name {
				hasCMake = true
			}
			defineFiles = append(defineFiles, path)
		case name == "Makefile" || name == "makefile" || strings.HasSuffix(lower, ".mk"):
			if rel == name {
				hasMake = true
			}
			defineFiles = append(defineFiles, path)
		case name == "compile_commands.json":
			result.Evidence = append(result.Evidence, s.scanCompileCommands(path, rel)...)
		}
		return nil
	})
	if walkErr != nil {
		return ScanResult{}, fmt.Errorf("failed to scan %s: %w", root, walkErr)
	}

	for _, path := range defineFiles {
		rel, _ := filepath.Rel(root, path)
		result.Evidence = append(result.Evidence, s.scanDefines(path, rel)...)
	}

	sortEvidence(result.Evidence)
	sort.Strings(result.SVDFiles)
	sortExecutables(result.Executables)

	if len(result.Evidence) > 0 {
		result.Device = result.Evidence[0].Device
		result.Confidence = result.Evidence[0].Confidence
	}

	switch {
	case hasCMake:
		result.BuildSystem = BuildCMake
		result.BuildTask = "CMake: build"
	case hasMake:
		result.BuildSystem = BuildMake
		result.BuildTask = "make"
	}
	if task := buildTaskFromTasksFile(filepath.Join(root, ".vscode", "tasks.json")); task != "" {
		result.BuildTask = task
	}

	result.Recommendations = recommendations(result)

	s.logger.Debug("project scanned",
		zap.String("root", root),
		zap.String("device", result.Device),
		zap.Int("confidence", result.Confidence),
		zap.Int("evidence", len(result.Evidence)),
		zap.String("build_system", result.BuildSystem),
	)
	return result, nil
}

// scanIOC reads Mcu.UserName (exact part) and Mcu.Name (family pattern).
func (s *Scanner) scanIOC(path, rel string) []Evidence {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Debug("failed to open ioc file", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	var out []Evidence
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		var confidence int
		switch key {
		case "Mcu.UserName":
			confidence = ConfidenceIOCUserName
		case "Mcu.Name":
			confidence = ConfidenceIOCName
		default:
			continue
		}
		if device := NormalizeDeviceName(value); device != "" {
			out = append(out, Evidence{Source: SourceIOC, File: rel, Device: device, Confidence: confidence})
		}
	}
	return out
}

// scanDefines looks for -DSTM32xxxx compiler flags in a build file.
func (s *Scanner) scanDefines(path, rel string) []Evidence {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxScanFileSize {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return definesIn(data, rel)
}

// scanCompileCommands reads compiler invocations from a compilation
// database, which stores either a command string or an argument list.
func (s *Scanner) scanCompileCommands(path, rel string) []Evidence {
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		s.logger.Debug("skipping compilation database", zap.String("path", path), zap.Error(err))
		return nil
	}
	var buf bytes.Buffer
	gjson.ParseBytes(data).ForEach(func(_, entry gjson.Result) bool {
		buf.WriteString(entry.Get("command").String())
		buf.WriteByte(' ')
		for _, arg := range entry.Get("arguments").Array() {
			buf.WriteString(arg.String())
			buf.WriteByte(' ')
		}
		buf.WriteByte('\n')
		return buf.Len() < maxScanFileSize
	})
	return definesIn(buf.Bytes(), rel)
}

func definesIn(data []byte, rel string) []Evidence {
	seen := make(map[string]bool)
	var out []Evidence
	for _, m := range definePattern.FindAllSubmatch(data, -1) {
		device := trimPartWildcard("STM32" + string(m[1]))
		if seen[device] {
			continue
		}
		seen[device] = true
		out = append(out, Evidence{Source: SourceDefine, File: rel, Device: device, Confidence: ConfidenceDefine})
	}
	return out
}

// NormalizeDeviceName turns a CubeMX part name into the device name used by
// debuggers: "STM32F407VGTx" becomes "STM32F407VG" and "STM32F407V(E-G)Tx"
// becomes "STM32F407V". Returns "" for non-STM32 names.
func NormalizeDeviceName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	m := iocDevicePattern.FindString(name)
	if m == "" {
		return ""
	}
	// Line, pin count and flash size identify the part; package and
	// temperature range do not matter for debugging.
	if len(m) > 11 {
		m = m[:11]
	}
	return m
}

// trimPartWildcard cuts a CMSIS-style part name at its first "x"
// placeholder: "stm32f407xx" and "STM32F103xB" become "STM32F407" and
// "STM32F103".
func trimPartWildcard(name string) string {
	name = strings.ToUpper(name)
	if len(name) > 5 {
		if i := strings.IndexByte(name[5:], 'X'); i >= 0 {
			name = name[:5+i]
		}
	}
	if len(name) > 11 {
		name = name[:11]
	}
	return name
}

// buildTaskFromTasksFile returns the label of the default build task, or the
// first build-group task, from a tasks.json that may contain comments.
func buildTaskFromTasksFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return ""
	}

	var first, preferred string
	gjson.GetBytes(std, "tasks").ForEach(func(_, task gjson.Result) bool {
		group := task.Get("group")
		kind := group.String()
		isDefault := false
		if group.IsObject() {
			kind = group.Get("kind").String()
			isDefault = group.Get("isDefault").Bool()
		}
		if kind != "build" {
			return true
		}
		label := task.Get("label").String()
		if first == "" {
			first = label
		}
		if isDefault {
			preferred = label
			return false
		}
		return true
	})
	if preferred != "" {
		return preferred
	}
	return first
}

func recommendations(r ScanResult) []string {
	recs := []string{
		fmt.Sprintf("Launch configurations use type %q; install the Cortex-Debug extension (%s).",
			debugconfig.TypeCortexDebug, urls.CortexDebugExtension),
	}
	if r.Device == "" {
		recs = append(recs, "No device could be inferred; pass --device or set defaultDevice.")
	} else if r.Confidence <= debugconfig.HintConfidenceThreshold {
		recs = append(recs, fmt.Sprintf("Device %s was inferred with low confidence; confirm it.", r.Device))
	}
	if len(r.SVDFiles) == 0 {
		recs = append(recs, fmt.Sprintf("No SVD file found; download one from %s for peripheral views.", urls.SVDRepository))
	}
	if len(r.Executables) == 0 {
		recs = append(recs, "No ELF image found; build the project or adjust the executable path.")
	}
	if r.BuildTask == "" {
		recs = append(recs, "No build system detected; add a preLaunchTask to rebuild before debugging.")
	}
	return recs
}

// sortEvidence orders by confidence, then by longer (more specific) device
// names, then by file for stability.
func sortEvidence(ev []Evidence) {
	sort.SliceStable(ev, func(i, j int) bool {
		if ev[i].Confidence != ev[j].Confidence {
			return ev[i].Confidence > ev[j].Confidence
		}
		if len(ev[i].Device) != len(ev[j].Device) {
			return len(ev[i].Device) > len(ev[j].Device)
		}
		return ev[i].File < ev[j].File
	})
}

// sortExecutables puts images under a build directory first.
func sortExecutables(exes []string) {
	sort.SliceStable(exes, func(i, j int) bool {
		bi, bj := inBuildDir(exes[i]), inBuildDir(exes[j])
		if bi != bj {
			return bi
		}
		return exes[i] < exes[j]
	})
}

func inBuildDir(rel string) bool {
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	first = strings.ToLower(first)
	return first == "build" || first == "debug" || first == "release" || strings.HasPrefix(first, "cmake-build")
}

func depth(rel string) int {
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
