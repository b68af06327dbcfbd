package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/debugconfig"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/devices"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/settings"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// newTable creates a bordered, left-aligned table.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)
	return table
}

func renderRows(table *tablewriter.Table, rows [][]string) error {
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// RenderDetectionTable writes one row per tool.
func RenderDetectionTable(w io.Writer, results toolchain.Results) error {
	table := newTable(w, []string{"Tool", "Status", "Version", "Path", "Source"})

	var rows [][]string
	for _, tool := range toolchain.AllTools {
		r, err := results.Get(tool)
		if err != nil {
			return err
		}
		source := r.Source
		if r.FromCache {
			source = strings.TrimSpace(source + " (cached)")
		}
		path := r.Path
		if path == "" {
			path = r.Error
		}
		rows = append(rows, []string{tool.DisplayName(), statusLabel(r.Status), dash(r.Version), dash(path), dash(source)})
	}
	return renderRows(table, rows)
}

// RenderDevicesTable lists device templates.
func RenderDevicesTable(w io.Writer, list []devices.DeviceConfig) error {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "No device templates match.")
		return nil
	}
	table := newTable(w, []string{"Prefix", "Family", "Core", "Interface", "Target", "Speed (kHz)", "SWO"})

	rows := make([][]string, 0, len(list))
	for _, d := range list {
		rows = append(rows, []string{
			d.Prefix,
			d.Family,
			d.Core,
			d.Interface,
			d.Target,
			strconv.Itoa(d.AdapterSpeed),
			yesNo(d.SupportsSWO()),
		})
	}
	return renderRows(table, rows)
}

// RenderTemplatesTable summarizes generated configurations.
func RenderTemplatesTable(w io.Writer, generated []debugconfig.GeneratedConfig) error {
	table := newTable(w, []string{"Name", "Variant", "Request", "Confidence"})

	rows := make([][]string, 0, len(generated))
	for _, g := range generated {
		rows = append(rows, []string{
			g.Config.Name(),
			g.Metadata.Variant,
			g.Config.Request(),
			fmt.Sprintf("%d%%", g.Metadata.Confidence),
		})
	}
	return renderRows(table, rows)
}

// RenderSettingsTable lists effective settings and the scope they come from.
func RenderSettingsTable(w io.Writer, entries []settings.Entry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No settings configured.")
		return nil
	}
	table := newTable(w, []string{"Key", "Value", "Scope"})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value, string(e.Scope)})
	}
	return renderRows(table, rows)
}

// RenderExecutablesTable lists the toolchain executables and whether each
// was found.
func RenderExecutablesTable(w io.Writer, result toolchain.ValidationResult) error {
	table := newTable(w, []string{"Tool", "Path", "Present"})

	missing := make(map[toolchain.ToolID]bool)
	for _, id := range result.MissingTools {
		missing[id] = true
	}
	for _, id := range result.MissingOptional {
		missing[id] = true
	}

	var rows [][]string
	for _, exe := range result.Executables.All() {
		rows = append(rows, []string{string(exe.ID), dash(exe.Path), yesNo(!missing[exe.ID])})
	}
	return renderRows(table, rows)
}

func statusLabel(s toolchain.DetectionStatus) string {
	switch s {
	case toolchain.StatusSuccess:
		return SuccessMarker + " found"
	case toolchain.StatusFailed:
		return FailureMarker + " missing"
	case toolchain.StatusDetecting:
		return StepMarkerRunning + " detecting"
	default:
		return StepMarkerPending + " not detected"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
