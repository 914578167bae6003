package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/five82/alfalfa"
)

// newTable returns a table writer rendering to w in the CLI's style.
func newTable(w io.Writer, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(row)
	return t
}

func colorStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case alfalfa.StatusRunning:
		return text.FgGreen.Sprint(status)
	case alfalfa.StatusComplete:
		return text.FgHiBlack.Sprint(status)
	case alfalfa.StatusError:
		return text.FgRed.Sprint(status)
	case alfalfa.StatusStarting, alfalfa.StatusStopping:
		return text.FgYellow.Sprint(status)
	default:
		return status
	}
}

func formatValue(v any) string {
	if v == nil {
		return text.FgHiBlack.Sprint("null")
	}
	return fmt.Sprint(v)
}

func printEmpty(w io.Writer, what string) {
	fmt.Fprintln(w, text.FgYellow.Sprintf("No %s found", what))
}
