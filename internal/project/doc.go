// Package project inspects an STM32 firmware workspace and turns what it
// finds into launch configurations.
//
// The Scanner infers the target device from STM32CubeMX project files
// (.ioc), startup assembly names (startup_stm32f407xx.s) and compiler
// defines (-DSTM32F407xx), and locates SVD files, built ELF images and the
// build task. Each device clue carries a confidence score; the strongest
// wins.
//
// The AutoConfigurator chains scanning, toolchain detection, template
// generation and the launch.json merge:
//
//	ac := project.NewAutoConfigurator(scanner, service, generator, store, logger)
//	report, err := ac.Run(ctx, workspaceDir, project.RunOptions{})
package project
