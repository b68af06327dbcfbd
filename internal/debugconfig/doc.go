// Package debugconfig generates cortex-debug launch configurations for STM32
// devices and merges them into a workspace launch.json.
//
// # Configuration documents
//
// A launch configuration is an open map (Config) because the debugger's
// schema evolves independently of this tool. Fields this package populates
// have typed accessors and are assembled with a Builder:
//
//	cfg := debugconfig.NewBuilder().
//	    Name("Debug STM32F407VG").
//	    Device("STM32F407VG").
//	    Executable("${workspaceFolder}/build/app.elf").
//	    OpenOCD("/usr/bin/openocd", []string{"interface/stlink-v2-1.cfg", "target/stm32f4x.cfg"}, 4000).
//	    Build()
//
// # Generation
//
// The Generator resolves a device template from the catalog, attaches the
// detected OpenOCD and toolchain paths, optional live watch, SWO and RTT
// blocks, and scores how much it trusts the result:
//
//	gen := debugconfig.NewGenerator(catalog, logger)
//	out := gen.Generate("STM32F103C8", results, nil, nil, debugconfig.Options{})
//	fmt.Println(out.Metadata.Confidence, out.Recommendations)
//
// # Launch documents
//
// MergeLaunch patches new configurations into an existing launch.json
// without disturbing comments or existing entries. Name collisions get
// " (2)", " (3)" suffixes unless overwriting. WriteLaunchFile does the same
// on disk under a file lock with an atomic rename.
package debugconfig
