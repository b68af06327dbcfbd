package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// ValidationResult is the completeness report for an installation.
//
// IsValid is true iff MissingTools and Errors are both empty. MissingTools
// only lists essential executables; absent optional executables are reported
// in MissingOptional without affecting IsValid.
type ValidationResult struct {
	IsValid         bool           `json:"isValid"`
	Info            *ToolchainInfo `json:"toolchainInfo,omitempty"`
	RootPath        string         `json:"rootPath,omitempty"`
	Executables     Executables    `json:"executables"`
	MissingTools    []ToolID       `json:"missingTools"`
	MissingOptional []ToolID       `json:"missingOptional"`
	Errors          []string       `json:"errors"`
}

// Validator checks that an installation contains the expected executables.
type Validator struct {
	prober    *VersionProber
	plat      platform.Platform
	essential map[ToolID]bool
	logger    *zap.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithEssentialTools replaces the set of executables that must be present.
func WithEssentialTools(ids ...ToolID) ValidatorOption {
	return func(v *Validator) {
		v.essential = make(map[ToolID]bool, len(ids))
		for _, id := range ids {
			v.essential[id] = true
		}
	}
}

// NewValidator creates a validator. prober may be nil to skip the version
// probe.
func NewValidator(prober *VersionProber, plat platform.Platform, logger *zap.Logger, opts ...ValidatorOption) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{
		prober: prober,
		plat:   plat,
		logger: logger,
	}
	WithEssentialTools(DefaultEssentialTools...)(v)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsEssential reports whether id is in the essential set.
func (v *Validator) IsEssential(id ToolID) bool {
	return v.essential[id]
}

// Validate checks the installation at path, which may be the compiler
// executable itself or the installation root directory.
func (v *Validator) Validate(ctx context.Context, path string) ValidationResult {
	result := ValidationResult{
		MissingTools:    []ToolID{},
		MissingOptional: []ToolID{},
		Errors:          []string{},
	}

	if path == "" {
		result.Errors = append(result.Errors, "toolchain path is empty")
		return result
	}

	root, err := v.resolveRoot(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.RootPath = root
	result.Executables = ExecutablesFor(root, v.plat)

	for _, exe := range result.Executables.All() {
		if platform.IsValidExecutable(exe.Path) {
			continue
		}
		if v.essential[exe.ID] {
			result.MissingTools = append(result.MissingTools, exe.ID)
		} else {
			result.MissingOptional = append(result.MissingOptional, exe.ID)
		}
	}

	if len(result.MissingTools) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("missing essential tools in %s: %v", root, result.MissingTools))
	}

	// Version is diagnostic only; it never changes IsValid
	if platform.IsValidExecutable(result.Executables.GCC) {
		info := NewToolchainInfo(result.Executables.GCC, v.prober.ProbeGCC(ctx, result.Executables.GCC))
		result.Info = &info
	}

	result.IsValid = len(result.MissingTools) == 0 && len(result.Errors) == 0

	v.logger.Debug("toolchain validated",
		zap.String("path", path),
		zap.String("root", root),
		zap.Bool("valid", result.IsValid),
		zap.Int("missing_essential", len(result.MissingTools)),
		zap.Int("missing_optional", len(result.MissingOptional)),
	)

	return result
}

// resolveRoot maps a compiler path or a directory to the installation root.
func (v *Validator) resolveRoot(path string) (string, error) {
	path = platform.Normalize(path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("toolchain path does not exist: %s", path)
		}
		return "", fmt.Errorf("cannot access toolchain path %s: %w", path, err)
	}

	if !info.IsDir() {
		return RootFromCompilerPath(path), nil
	}

	// A bin directory holding the compiler stands for its parent
	if filepath.Base(path) == "bin" {
		gcc := v.plat.BuildExecutablePath(path, DefaultTarget+"-gcc")
		if platform.IsValidExecutable(gcc) {
			return filepath.Dir(path), nil
		}
	}

	return path, nil
}
