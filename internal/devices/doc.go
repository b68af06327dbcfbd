// Package devices provides the embedded catalog of STM32 debug templates.
//
// Each template maps a device-name prefix to the OpenOCD interface and target
// scripts, adapter speed, memory map and core capabilities for that family.
// The catalog is loaded once from an embedded YAML file and never mutated.
//
// Lookup is case-insensitive and the longest matching prefix wins. Prefixes
// are unique, so there is never a tie. Unrecognized names resolve to the
// default STM32F4 template:
//
//	catalog, err := devices.Load()
//	dev := catalog.Match("STM32F407VG")  // STM32F4 series
//	dev = catalog.Match("FOOBAR123")     // default template
package devices
