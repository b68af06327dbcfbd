package urls

// Download locations

// ArmToolchainDownload is the Arm GNU Toolchain download page with installers
// for arm-none-eabi on every host platform.
const ArmToolchainDownload = "https://developer.arm.com/downloads/-/arm-gnu-toolchain-downloads"

// OpenOCDDownload lists the xPack OpenOCD releases, which ship prebuilt
// binaries together with the scripts directory.
const OpenOCDDownload = "https://github.com/xpack-dev-tools/openocd-xpack/releases"

// SVDRepository collects CMSIS SVD files for STM32 devices.
const SVDRepository = "https://github.com/modm-io/cmsis-svd-stm32"

// Documentation

// CortexDebugExtension is the debugger extension that consumes the generated
// launch configurations.
const CortexDebugExtension = "https://marketplace.visualstudio.com/items?itemName=marus25.cortex-debug"

// CortexDebugLaunchAttributes documents every launch.json attribute understood
// by cortex-debug.
const CortexDebugLaunchAttributes = "https://github.com/Marus/cortex-debug/blob/master/debug_attributes.md"

// OpenOCDUserGuide is the OpenOCD manual covering interface and target
// configuration.
const OpenOCDUserGuide = "https://openocd.org/doc/html/index.html"
