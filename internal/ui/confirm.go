package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm shows a warning box listing items and asks a yes/no question on
// out, reading the answer from in. Anything but "y" or "yes" declines.
func Confirm(in io.Reader, out io.Writer, title string, items []string, question string) bool {
	box := NewWarningResult(title).AddHints(items...)
	box.HintTitle = "Affected:"

	_, _ = fmt.Fprintln(out, box.Render())
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render(question+" [y/N]: "))

	answer, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		_, _ = fmt.Fprintln(out, StepNoteStyle.Render("  Nothing changed."))
		return false
	}
}
