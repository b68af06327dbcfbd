package devices

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed devices.yaml
var devicesYAML []byte

// Capability flags.
const (
	FlagFPU   = "fpu"
	FlagDSP   = "dsp"
	FlagCache = "cache"
)

// Memory is the flash and RAM layout of a device.
type Memory struct {
	FlashStart uint64 `yaml:"flash_start" json:"flashStart"`
	FlashSize  uint64 `yaml:"flash_size" json:"flashSize"`
	RAMStart   uint64 `yaml:"ram_start" json:"ramStart"`
	RAMSize    uint64 `yaml:"ram_size" json:"ramSize"`
}

// DeviceConfig is a debug template for a device family.
type DeviceConfig struct {
	// Prefix is matched against the start of the device name
	Prefix string `yaml:"prefix" json:"prefix"`

	// Name is the human-readable template name
	Name string `yaml:"name" json:"name"`

	// Family groups related templates (e.g. "STM32F4")
	Family string `yaml:"family" json:"family"`

	// Core is the CPU core identifier (e.g. "cortex-m4")
	Core string `yaml:"core" json:"core"`

	// Interface is the OpenOCD interface script name
	Interface string `yaml:"interface" json:"interface"`

	// Target is the OpenOCD target script name
	Target string `yaml:"target" json:"target"`

	// AdapterSpeed is the probe clock in kHz
	AdapterSpeed int `yaml:"adapter_speed" json:"adapterSpeed"`

	// SVDFile is the peripheral description file name, if known
	SVDFile string `yaml:"svd_file,omitempty" json:"svdFile,omitempty"`

	// CPUFrequency is the core clock in Hz used for SWO
	CPUFrequency int64 `yaml:"cpu_frequency" json:"cpuFrequency"`

	Memory Memory `yaml:"memory" json:"memory"`

	// Flags lists capabilities: fpu, dsp, cache
	Flags []string `yaml:"flags" json:"flags"`
}

// HasFlag reports whether the template carries the capability flag.
func (d DeviceConfig) HasFlag(flag string) bool {
	for _, f := range d.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// IsCortexM reports whether the core is in the Cortex-M family.
func (d DeviceConfig) IsCortexM() bool {
	return strings.HasPrefix(strings.ToLower(d.Core), "cortex-m")
}

// SupportsSWO reports whether the core implements the ITM/SWO trace unit.
// Cortex-M0 and M0+ do not.
func (d DeviceConfig) SupportsSWO() bool {
	switch strings.ToLower(d.Core) {
	case "cortex-m3", "cortex-m4", "cortex-m7", "cortex-m33", "cortex-m55":
		return true
	default:
		return false
	}
}

// SupportsRTT reports whether SEGGER RTT can be used. RTT only needs memory
// access while running, which every Cortex-M core provides.
func (d DeviceConfig) SupportsRTT() bool {
	return d.IsCortexM()
}

// String returns a short description of the template.
func (d DeviceConfig) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Prefix, d.Core)
}

func (d DeviceConfig) clone() DeviceConfig {
	c := d
	c.Flags = append([]string{}, d.Flags...)
	return c
}

// Catalog is a read-only set of device templates.
type Catalog struct {
	devices []DeviceConfig
	byKey   map[string]int
	def     DeviceConfig
}

// catalogFile is for YAML unmarshaling
type catalogFile struct {
	Default DeviceConfig   `yaml:"default"`
	Devices []DeviceConfig `yaml:"devices"`
}

var (
	// globalCatalog is the embedded catalog
	globalCatalog *Catalog
	// globalCatalogOnce ensures the embedded catalog is parsed once
	globalCatalogOnce sync.Once
	// globalCatalogErr stores any error from loading
	globalCatalogErr error
)

// Load returns the embedded catalog. It is safe to call repeatedly.
func Load() (*Catalog, error) {
	globalCatalogOnce.Do(func() {
		globalCatalog, globalCatalogErr = Parse(devicesYAML)
	})
	return globalCatalog, globalCatalogErr
}

// MustLoad is like Load but panics if the embedded catalog is invalid.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML. Every template needs a prefix, interface
// and target, and prefixes must be unique ignoring case.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse device catalog: %w", err)
	}

	if err := validateTemplate(file.Default); err != nil {
		return nil, fmt.Errorf("invalid default template: %w", err)
	}

	c := &Catalog{
		devices: make([]DeviceConfig, 0, len(file.Devices)),
		byKey:   make(map[string]int, len(file.Devices)),
		def:     file.Default.clone(),
	}

	for i, d := range file.Devices {
		if err := validateTemplate(d); err != nil {
			return nil, fmt.Errorf("invalid template #%d: %w", i+1, err)
		}
		key := strings.ToUpper(d.Prefix)
		if prev, ok := c.byKey[key]; ok {
			return nil, fmt.Errorf("duplicate device prefix %q (templates %q and %q)",
				d.Prefix, c.devices[prev].Name, d.Name)
		}
		c.byKey[key] = len(c.devices)
		c.devices = append(c.devices, d.clone())
	}

	return c, nil
}

func validateTemplate(d DeviceConfig) error {
	switch {
	case strings.TrimSpace(d.Prefix) == "":
		return fmt.Errorf("prefix is required")
	case d.Interface == "":
		return fmt.Errorf("%s: interface is required", d.Prefix)
	case d.Target == "":
		return fmt.Errorf("%s: target is required", d.Prefix)
	case d.AdapterSpeed <= 0:
		return fmt.Errorf("%s: adapter_speed must be positive", d.Prefix)
	}
	return nil
}

// Lookup returns the template with the longest prefix matching name. ok is
// false when no template matches.
func (c *Catalog) Lookup(name string) (DeviceConfig, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return DeviceConfig{}, false
	}

	// Walk from the full name down to one character; the first hit is the
	// longest matching prefix
	for n := len(upper); n > 0; n-- {
		if i, ok := c.byKey[upper[:n]]; ok {
			return c.devices[i].clone(), true
		}
	}
	return DeviceConfig{}, false
}

// Match returns the best template for name, falling back to Default.
func (c *Catalog) Match(name string) DeviceConfig {
	if d, ok := c.Lookup(name); ok {
		return d
	}
	return c.Default()
}

// Default returns the fallback template.
func (c *Catalog) Default() DeviceConfig {
	return c.def.clone()
}

// List returns every template in declaration order.
func (c *Catalog) List() []DeviceConfig {
	out := make([]DeviceConfig, len(c.devices))
	for i, d := range c.devices {
		out[i] = d.clone()
	}
	return out
}

// Families returns the sorted distinct family names.
func (c *Catalog) Families() []string {
	seen := make(map[string]bool)
	families := make([]string, 0)
	for _, d := range c.devices {
		if !seen[d.Family] {
			seen[d.Family] = true
			families = append(families, d.Family)
		}
	}
	sort.Strings(families)
	return families
}

// CPUFrequency returns the core clock for a family, or the default
// template's clock when the family is unknown.
func (c *Catalog) CPUFrequency(family string) int64 {
	for _, d := range c.devices {
		if strings.EqualFold(d.Family, family) && d.CPUFrequency > 0 {
			return d.CPUFrequency
		}
	}
	return c.def.CPUFrequency
}

// Count returns the number of templates, excluding the default.
func (c *Catalog) Count() int {
	return len(c.devices)
}
