package debugconfig

import "github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"

// GenerateTemplates produces the standard set of variants for device in a
// fixed order: basic, live watch, attach, then SWO trace when the core
// supports it and RTT for Cortex-M cores.
func (g *Generator) GenerateTemplates(device string, results toolchain.Results, hints *ProjectHints, bridge *BridgeSelection) []GeneratedConfig {
	resolved := device
	if hints != nil && hints.DeviceName != "" && hints.Confidence > HintConfidenceThreshold {
		resolved = hints.DeviceName
	}
	tmpl := g.catalog.Match(resolved)

	variants := []Options{
		{Variant: VariantBasic},
		{Variant: VariantLiveWatch, LiveWatch: true},
		{Variant: VariantAttach, Request: RequestAttach},
	}
	if tmpl.SupportsSWO() {
		variants = append(variants, Options{Variant: VariantSWO, SWO: true})
	}
	if tmpl.SupportsRTT() {
		variants = append(variants, Options{Variant: VariantRTT, RTT: true})
	}

	out := make([]GeneratedConfig, 0, len(variants))
	for _, opts := range variants {
		out = append(out, g.Generate(device, results, hints, bridge, opts))
	}
	return out
}

// Configs extracts the launch configurations from generated results.
func Configs(generated []GeneratedConfig) []Config {
	out := make([]Config, len(generated))
	for i, g := range generated {
		out[i] = g.Config
	}
	return out
}
