// Package main is the stm32cfg command.
//
// stm32cfg locates the ARM GCC cross-compiler and OpenOCD on the host and
// produces cortex-debug launch configurations for STM32 projects. Logging is
// silent unless STM32CFG_LOG_LEVEL is set; a .env file in the working
// directory is loaded first.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/logging"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/version"
)

func main() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stm32cfg",
	Short: "STM32 toolchain detection and cortex-debug configuration",
	Long: `stm32cfg finds the ARM GCC toolchain and OpenOCD on this machine and
generates cortex-debug launch configurations for STM32 devices.

Detection checks the configured paths first, then PATH, then well-known
installation directories. Generated configurations are merged into
.vscode/launch.json without disturbing existing entries or comments.`,
	Version: version.Version,
	Example: `  # Show detected toolchains
  stm32cfg detect

  # Configure the current project end to end
  stm32cfg configure

  # Print a configuration for a specific device
  stm32cfg generate --device STM32F407VG --variant live-watch

  # Remember a toolchain location for this workspace
  stm32cfg config set armToolchainPath /opt/gcc-arm/bin --scope workspace`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if jsonOutput {
			return printJSON(cmd, info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stm32cfg %s %s %s\n", version.Full(), info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}
