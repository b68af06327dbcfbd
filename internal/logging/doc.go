// Package logging owns the process-wide zap logger for stm32cfg.
//
// Library packages take a *zap.Logger in their constructors; the command
// root initializes this package once and hands out named children.
//
// # Log Levels
//
//   - Debug: discovery attempts, subprocess output, cache hits
//   - Info: detection results, generated configurations, files written
//   - Warn: non-fatal issues (config enumeration failed, version unparseable)
//   - Error: failures surfaced to the user
//
// # Configuration
//
// Logging is silent by default so command output stays clean. Enable it with
// --log-level or STM32CFG_LOG_LEVEL, and select JSON lines with
// STM32CFG_LOG_FORMAT=json:
//
//	STM32CFG_LOG_LEVEL=debug stm32cfg detect
//	stm32cfg configure --log-level info 2> configure.log
//
// Logs are written to stderr.
package logging
