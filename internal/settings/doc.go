// Package settings stores host configuration for stm32cfg.
//
// Settings are string key/value pairs kept in YAML files at two scopes:
//   - global: $XDG_CONFIG_HOME/stm32cfg/config.yaml (per-OS equivalent elsewhere)
//   - workspace: .stm32cfg.yaml in the project root
//
// Reads consult the workspace file first, then the global file. Writes take
// a cross-process file lock and replace the file atomically.
//
// # Usage Example
//
//	store, err := settings.NewFileStore(workspaceDir, logger)
//	if err != nil {
//	    return err
//	}
//	if path, ok := store.Get(settings.KeyToolchainPath); ok {
//	    fmt.Println("toolchain:", path)
//	}
//	err = store.Update(ctx, settings.KeyOpenOCDPath, "/opt/openocd/bin/openocd", settings.ScopeGlobal)
//
// The Store interface satisfies toolchain.ConfigReader, so a store can be
// handed to the detectors directly.
package settings
