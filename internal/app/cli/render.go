package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ozacod/forge/internal/pkg/msg"
	"github.com/ozacod/forge/internal/pkg/quality"
	"github.com/ozacod/forge/internal/pkg/toolchain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// RenderToolchain renders the resolved toolchain banner for project.
func RenderToolchain(project string, tc toolchain.Toolchain) string {
	generator := tc.Generator
	if generator == "" {
		generator = "(cmake default)"
	}
	if tc.Toolset != "" {
		generator += " -T " + tc.Toolset
	}

	version := tc.Version
	if version == "" {
		version = "unknown"
	}

	var rows [][2]string
	if project != "" {
		rows = append(rows, [2]string{"project", project})
	}
	rows = append(rows, [][2]string{
		{"compiler", fmt.Sprintf("%s %s", tc.Compiler, version)},
		{"platform", string(tc.Platform)},
		{"generator", generator},
	}...)
	if tc.Path != "" {
		rows = append(rows, [2]string{"path", tc.Path})
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("toolchain"))
	for _, row := range rows {
		b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("%-10s", row[0])) + row[1])
	}
	return boxStyle.Render(b.String())
}

// RenderReport renders one line per language of a format/lint run, followed
// by the diagnostics of every failed language.
func RenderReport(r quality.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(r.Command) + "\n")

	for _, o := range r.Outcomes {
		var status string
		switch o.Status {
		case quality.Applied:
			status = okStyle.Render(fmt.Sprintf("ok (%d files)", o.Files))
		case quality.SkippedToolMissing:
			status = skipStyle.Render(o.Status.String())
		default:
			status = failStyle.Render(o.Status.String())
			if o.Status == quality.FailedToolError {
				status += labelStyle.Render(fmt.Sprintf(" exit %d", o.ExitCode))
			}
		}
		fmt.Fprintf(&b, "  %-8s %-14s %s\n", o.Language, o.Tool, status)
	}

	for _, o := range r.Outcomes {
		if o.Status == quality.FailedToolError && o.Diagnostics != "" {
			fmt.Fprintf(&b, "\n%s\n", failStyle.Render(o.Tool+":"))
			iw := &msg.IndentWriter{Indent: "    ", W: &b}
			fmt.Fprintln(iw, strings.TrimRight(o.Diagnostics, "\n"))
		}
	}
	return b.String()
}
