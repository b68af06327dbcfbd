package toolchain

import (
	"path/filepath"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"
)

// ToolID names one companion executable of the cross-compiler suite.
type ToolID string

const (
	ToolGCC     ToolID = "gcc"
	ToolGPP     ToolID = "g++"
	ToolAs      ToolID = "as"
	ToolLd      ToolID = "ld"
	ToolAr      ToolID = "ar"
	ToolObjcopy ToolID = "objcopy"
	ToolObjdump ToolID = "objdump"
	ToolSize    ToolID = "size"
	ToolNm      ToolID = "nm"
	ToolGDB     ToolID = "gdb"
)

// AllToolIDs lists the ten executables in a fixed order.
var AllToolIDs = []ToolID{
	ToolGCC, ToolGPP, ToolAs, ToolLd, ToolAr,
	ToolObjcopy, ToolObjdump, ToolSize, ToolNm, ToolGDB,
}

// DefaultEssentialTools are the executables whose absence invalidates an
// installation.
var DefaultEssentialTools = []ToolID{ToolGCC, ToolGPP, ToolAs, ToolLd, ToolAr}

// Executables holds the expected paths of the ten toolchain executables.
type Executables struct {
	GCC     string `json:"gcc"`
	GPP     string `json:"gpp"`
	As      string `json:"as"`
	Ld      string `json:"ld"`
	Ar      string `json:"ar"`
	Objcopy string `json:"objcopy"`
	Objdump string `json:"objdump"`
	Size    string `json:"size"`
	Nm      string `json:"nm"`
	GDB     string `json:"gdb"`
}

// Executable pairs a tool identifier with its expected path.
type Executable struct {
	ID   ToolID
	Path string
}

// ExecutablesFor derives the executable paths under root for the default
// arm-none-eabi prefix.
func ExecutablesFor(root string, plat platform.Platform) Executables {
	return ExecutablesWithPrefix(root, DefaultTarget, plat)
}

// ExecutablesWithPrefix derives the executable paths under root/bin using the
// given target-triple prefix. The result is deterministic in root, prefix and
// platform.
func ExecutablesWithPrefix(root, prefix string, plat platform.Platform) Executables {
	bin := filepath.Join(root, "bin")
	name := func(id ToolID) string {
		return plat.BuildExecutablePath(bin, prefix+"-"+string(id))
	}
	return Executables{
		GCC:     name(ToolGCC),
		GPP:     name(ToolGPP),
		As:      name(ToolAs),
		Ld:      name(ToolLd),
		Ar:      name(ToolAr),
		Objcopy: name(ToolObjcopy),
		Objdump: name(ToolObjdump),
		Size:    name(ToolSize),
		Nm:      name(ToolNm),
		GDB:     name(ToolGDB),
	}
}

// All returns the executables in AllToolIDs order.
func (e Executables) All() []Executable {
	all := make([]Executable, 0, len(AllToolIDs))
	for _, id := range AllToolIDs {
		all = append(all, Executable{ID: id, Path: e.Path(id)})
	}
	return all
}

// Path returns the path for id, or "" for an unknown identifier.
func (e Executables) Path(id ToolID) string {
	switch id {
	case ToolGCC:
		return e.GCC
	case ToolGPP:
		return e.GPP
	case ToolAs:
		return e.As
	case ToolLd:
		return e.Ld
	case ToolAr:
		return e.Ar
	case ToolObjcopy:
		return e.Objcopy
	case ToolObjdump:
		return e.Objdump
	case ToolSize:
		return e.Size
	case ToolNm:
		return e.Nm
	case ToolGDB:
		return e.GDB
	default:
		return ""
	}
}

// RootFromCompilerPath strips the trailing bin/<exe> from a compiler path.
// An empty path yields Unknown so callers never see an empty root.
func RootFromCompilerPath(gccPath string) string {
	if gccPath == "" {
		return Unknown
	}
	dir := filepath.Dir(platform.Normalize(gccPath))
	if filepath.Base(dir) == "bin" {
		return filepath.Dir(dir)
	}
	return dir
}
