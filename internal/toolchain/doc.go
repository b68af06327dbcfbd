// Package toolchain detects and validates the ARM embedded toolchain
// (arm-none-eabi-gcc and its companions) and the OpenOCD debug bridge.
//
// # Architecture
//
// Detection is an ordered chain of discovery sources. The first source that
// yields an existing executable wins; nothing is scored:
//
//	┌────────────────────┐
//	│ settings source    │  explicit path from host configuration
//	└─────────┬──────────┘
//	          │ not found
//	          v
//	┌────────────────────┐
//	│ PATH source        │  `which`/`where` through the Runner, bounded timeout
//	└─────────┬──────────┘
//	          │ not found
//	          v
//	┌────────────────────┐
//	│ well-known source  │  OS-specific install templates, newest version first
//	└─────────┬──────────┘
//	          │
//	          v
//	  DetectionResult (success with path, or failed with error)
//
// Detectors never return errors. Every failure, including subprocess timeouts
// and unparseable version output, ends up in DetectionResult.Error or as the
// "Unknown" sentinel in version fields.
//
// # Core Components
//
// Runner: subprocess execution with a per-call timeout
//
//	runner := toolchain.NewExecRunner(5*time.Second, logger)
//
// Detectors: one per tool, sharing the same fallback contract
//
//	gcc := toolchain.NewGCCDetector(toolchain.DetectorConfig{
//	    Settings: store,
//	    Runner:   runner,
//	    Platform: platform.Current(),
//	    Logger:   logger,
//	}, nil)
//	result := gcc.Detect(ctx, time.Now())
//
// Validator: completeness check of an installation root
//
//	v := toolchain.NewValidator(toolchain.NewVersionProber(runner, logger), platform.Current(), logger)
//	report := v.Validate(ctx, "/opt/gcc-arm-none-eabi-10.3-2021.10")
package toolchain
