package toolchain

import "github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/platform"

// Installation directory templates. Each template names a directory expected
// to contain the executable directly. {version} is globbed with the newest
// match tried first and {arch} is replaced with Platform.Arch().

var gccWindowsLocations = []string{
	`%ProgramFiles%\Arm GNU Toolchain arm-none-eabi\{version}\bin`,
	`%ProgramFiles%\GNU Arm Embedded Toolchain\{version}\bin`,
	`%ProgramFiles%\GNU Tools ARM Embedded\{version}\bin`,
	`%LOCALAPPDATA%\xPacks\@xpack-dev-tools\arm-none-eabi-gcc\{version}\.content\bin`,
	`%APPDATA%\xPacks\@xpack-dev-tools\arm-none-eabi-gcc\{version}\.content\bin`,
	`C:\ST\STM32CubeIDE_{version}\STM32CubeIDE\plugins\com.st.stm32cube.ide.mcu.externaltools.gnu-tools-for-stm32.*\tools\bin`,
	`C:\msys64\mingw64\bin`,
	`C:\ChocolateyInstall\bin`,
	`%USERPROFILE%\scoop\apps\gcc-arm-none-eabi\current\bin`,
}

var gccDarwinLocations = []string{
	"/Applications/ArmGNUToolchain/{version}/arm-none-eabi/bin",
	"/opt/homebrew/bin",
	"/usr/local/bin",
	"/opt/local/bin",
	"~/Library/xPacks/@xpack-dev-tools/arm-none-eabi-gcc/{version}/.content/bin",
	"/Applications/STM32CubeIDE.app/Contents/Eclipse/plugins/com.st.stm32cube.ide.mcu.externaltools.gnu-tools-for-stm32.*/tools/bin",
}

var gccLinuxLocations = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/opt/arm-gnu-toolchain-{version}-{arch}-arm-none-eabi/bin",
	"/opt/gcc-arm-none-eabi-{version}/bin",
	"/opt/gcc-arm-none-eabi/bin",
	"~/.local/xPacks/@xpack-dev-tools/arm-none-eabi-gcc/{version}/.content/bin",
	"/opt/st/stm32cubeide_{version}/plugins/com.st.stm32cube.ide.mcu.externaltools.gnu-tools-for-stm32.*/tools/bin",
	"/snap/bin",
}

var openOCDWindowsLocations = []string{
	`%ProgramFiles%\OpenOCD\bin`,
	`%ProgramFiles%\xpack-openocd-{version}\bin`,
	`%LOCALAPPDATA%\xPacks\@xpack-dev-tools\openocd\{version}\.content\bin`,
	`%APPDATA%\xPacks\@xpack-dev-tools\openocd\{version}\.content\bin`,
	`C:\OpenOCD\bin`,
	`C:\openocd\xpack-openocd-{version}\bin`,
	`C:\msys64\mingw64\bin`,
	`%USERPROFILE%\scoop\apps\openocd\current\bin`,
}

var openOCDDarwinLocations = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
	"/opt/local/bin",
	"~/Library/xPacks/@xpack-dev-tools/openocd/{version}/.content/bin",
}

var openOCDLinuxLocations = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/opt/openocd/bin",
	"/opt/xpack-openocd-{version}/bin",
	"~/.local/xPacks/@xpack-dev-tools/openocd/{version}/.content/bin",
}

// DefaultGCCLocations returns the cross-compiler installation templates for
// the platform.
func DefaultGCCLocations(plat platform.Platform) []string {
	switch {
	case plat.IsWindows():
		return append([]string(nil), gccWindowsLocations...)
	case plat.IsDarwin():
		return append([]string(nil), gccDarwinLocations...)
	default:
		return append([]string(nil), gccLinuxLocations...)
	}
}

// DefaultOpenOCDLocations returns the OpenOCD installation templates for the
// platform.
func DefaultOpenOCDLocations(plat platform.Platform) []string {
	switch {
	case plat.IsWindows():
		return append([]string(nil), openOCDWindowsLocations...)
	case plat.IsDarwin():
		return append([]string(nil), openOCDDarwinLocations...)
	default:
		return append([]string(nil), openOCDLinuxLocations...)
	}
}
