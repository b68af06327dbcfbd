// Package platform answers the operating-system questions shared by the
// detectors, the validator and the configuration generator: which suffix an
// executable carries, how paths are normalized, and how home-directory and
// environment-variable references in installation templates expand.
//
// Everything OS-specific lives behind the Platform type so tests can describe a
// Windows or macOS host while running on Linux:
//
//	win := platform.Platform{GOOS: "windows", Getenv: env.Get}
//	win.BuildExecutablePath(`C:\tools\bin`, "arm-none-eabi-gcc")
//	// C:\tools\bin\arm-none-eabi-gcc.exe
package platform
