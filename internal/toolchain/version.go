package toolchain

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultTarget is the target triple assumed for the cross-compiler.
const DefaultTarget = "arm-none-eabi"

// gccVersionPattern matches the first line of `arm-none-eabi-gcc --version`:
//
//	arm-none-eabi-gcc (GNU Arm Embedded Toolchain 10.3-2021.10) 10.3.1 20210824 (release)
//
// Whitespace is matched exactly; any deviation falls back to the sentinels.
var gccVersionPattern = regexp.MustCompile(`^(\S+) \(([^()]+)\) (\d+\.\d+\.\d+) (\d{8}) \(([^()]+)\)$`)

// releaseSuffixPattern matches a trailing release token such as
// "10.3-2021.10" or "13.2.rel1" inside the vendor label.
var releaseSuffixPattern = regexp.MustCompile(`\s+\d[\w.\-]*$`)

// openOCDVersionPattern matches the OpenOCD banner, including xPack builds:
//
//	Open On-Chip Debugger 0.12.0+dev-01312-g18281b0c4 (2023-09-04-22:32)
var openOCDVersionPattern = regexp.MustCompile(`Open On-Chip Debugger v?(\d+\.\d+\.\d+)`)

// GCCVersion is the parsed form of the cross-compiler version banner.
type GCCVersion struct {
	Tool        string
	Version     string
	Vendor      string
	Target      string
	BuildDate   string
	ReleaseKind string
	// Parsed is false when the sentinel values were used.
	Parsed bool
}

// UnknownGCCVersion returns the sentinel values used for unparseable output.
func UnknownGCCVersion() GCCVersion {
	return GCCVersion{
		Version: Unknown,
		Vendor:  Unknown,
		Target:  DefaultTarget,
	}
}

// ParseGCCVersion extracts version and vendor from raw --version output.
// It never fails: malformed output yields UnknownGCCVersion.
func ParseGCCVersion(output string) GCCVersion {
	line, _, _ := strings.Cut(output, "\n")
	line = strings.TrimSuffix(line, "\r")

	m := gccVersionPattern.FindStringSubmatch(line)
	if m == nil {
		return UnknownGCCVersion()
	}

	// The vendor drops the release token; the target keeps the full label
	vendor := releaseSuffixPattern.ReplaceAllString(m[2], "")
	if vendor == "" {
		vendor = m[2]
	}

	return GCCVersion{
		Tool:        m[1],
		Version:     m[3],
		Vendor:      vendor,
		Target:      m[2],
		BuildDate:   m[4],
		ReleaseKind: m[5],
		Parsed:      true,
	}
}

// ParseOpenOCDVersion extracts the semantic version and the banner line from
// `openocd --version` output. Unparseable output yields Unknown.
func ParseOpenOCDVersion(output string) (version, banner string) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := openOCDVersionPattern.FindStringSubmatch(line); m != nil {
			return m[1], line
		}
	}
	return Unknown, ""
}

// NewToolchainInfo assembles the cross-compiler detail record.
func NewToolchainInfo(gccPath string, v GCCVersion) ToolchainInfo {
	return ToolchainInfo{
		Version:  v.Version,
		GCCPath:  gccPath,
		RootPath: RootFromCompilerPath(gccPath),
		Target:   v.Target,
		Vendor:   v.Vendor,
	}
}

// VersionProber runs `<gcc> --version` and memoizes parsed results keyed by
// path, size and modification time.
type VersionProber struct {
	runner Runner
	memo   *lru.Cache[string, GCCVersion]
	logger *zap.Logger
}

// versionMemoSize bounds the number of distinct compiler binaries remembered.
const versionMemoSize = 64

// NewVersionProber creates a prober backed by runner.
func NewVersionProber(runner Runner, logger *zap.Logger) *VersionProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	memo, err := lru.New[string, GCCVersion](versionMemoSize)
	if err != nil {
		// Only returned for a non-positive size
		panic(fmt.Sprintf("toolchain: version memo: %v", err))
	}
	return &VersionProber{
		runner: runner,
		memo:   memo,
		logger: logger,
	}
}

// ProbeGCC returns the parsed version of the compiler at gccPath. Subprocess
// failures yield the sentinel values and are not memoized.
func (p *VersionProber) ProbeGCC(ctx context.Context, gccPath string) GCCVersion {
	if p == nil || p.runner == nil || gccPath == "" {
		return UnknownGCCVersion()
	}

	key := memoKey(gccPath)
	if key != "" {
		if v, ok := p.memo.Get(key); ok {
			return v
		}
	}

	out, err := p.runner.Run(ctx, gccPath, "--version")
	if err != nil {
		p.logger.Warn("compiler version probe failed",
			zap.String("gcc_path", gccPath),
			zap.Error(err),
		)
		return UnknownGCCVersion()
	}

	v := ParseGCCVersion(out.Stdout)
	if !v.Parsed {
		p.logger.Warn("unrecognized compiler version output",
			zap.String("gcc_path", gccPath),
			zap.String("output", firstLine(out.Stdout)),
		)
	}

	if key != "" {
		p.memo.Add(key, v)
	}
	return v
}

func memoKey(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
