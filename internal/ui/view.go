package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/state"
)

// Terminal width below which the error column is hidden.
const layoutCompactWidth = 100

func columnsFor(width int) []table.Column {
	cols := []table.Column{
		{Title: "Run", Width: 38},
		{Title: "Status", Width: 10},
		{Title: "Sim Time", Width: 20},
	}
	if width >= layoutCompactWidth {
		rest := width - 38 - 10 - 20 - 8
		cols = append(cols, table.Column{Title: "Error", Width: max(rest, 10)})
	}
	return cols
}

func buildRows(runs []state.Run) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row{
			string(r.ID),
			displayStatus(r.Status),
			displayTime(r),
			displayErr(r.Err),
		})
	}
	return rows
}

func displayStatus(status string) string {
	if strings.TrimSpace(status) == "" {
		return "-"
	}
	return strings.ToUpper(strings.TrimSpace(status))
}

func displayTime(r state.Run) string {
	if r.SimTime.IsZero() {
		return "-"
	}
	return r.SimTime.Format(alfalfa.TimeLayout)
}

func displayErr(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderSelected())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader shows the host, per-status counts and connection state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{
		styles.Logo.Render("alfalfa"),
		styles.Header.Render(m.host),
	}

	counts := m.snapshot.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		badge := styles.StatusStyle(name).Render(fmt.Sprintf("%s %d", name, counts[name]))
		parts = append(parts, badge)
	}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, styles.DangerText.Render("OFFLINE "+m.spinner.View()))
	case m.snapshot.LastError != nil:
		parts = append(parts, styles.WarningText.Render("retrying "+m.spinner.View()))
	case m.activeRuns() > 0:
		parts = append(parts, styles.AccentText.Render(m.spinner.View()))
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+m.snapshot.LastUpdated.Format("15:04:05")))
	}

	return strings.Join(parts, " ")
}

func (m Model) activeRuns() int {
	n := 0
	for _, r := range m.snapshot.Runs {
		if p := state.PhaseOf(r.Status); p == state.PhasePending || p == state.PhaseActive {
			n++
		}
	}
	return n
}

// renderSelected shows the highlighted run with its status badge and full
// error, which the table may have truncated.
func (m Model) renderSelected() string {
	styles := m.theme.Styles()
	runs := m.snapshot.Runs
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(runs) {
		return styles.MutedText.Render("no runs")
	}
	r := runs[cursor]
	line := styles.StatusStyle(r.Status).Render(displayStatus(r.Status)) + " " + styles.Text.Render(string(r.ID))
	switch {
	case r.Err != nil:
		line += " " + styles.DangerText.Render(displayErr(r.Err))
	case state.PhaseOf(r.Status) == state.PhaseFailed:
		line += " " + styles.DangerText.Render("see `alfalfa errorlog "+string(r.ID)+"`")
	}
	return line
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return styles.Footer.Render(strings.Join(hints, "  ·  ") + "  ·  theme " + m.theme.Name)
}
