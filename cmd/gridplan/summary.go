package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-gridplan/pkg/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

func renderSummary(s report.Summary, outDir string) string {
	rows := []struct {
		label string
		value string
	}{
		{"Run", s.RunID},
		{"Elements", fmt.Sprintf("%d", s.Elements)},
		{"Paths", fmt.Sprintf("%d found, %d active", s.Paths, s.ActivePaths)},
		{"Links", fmt.Sprintf("%d transformer-terminal", s.Links)},
		{"Connections", fmt.Sprintf("%d", s.Connections)},
		{"Objective", objectiveLine(s)},
		{"Served", fmt.Sprintf("%d", s.Served)},
		{"Output", outDir},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Connection plan"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(r.value)
		b.WriteString("\n")
	}
	if len(s.Unserved) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ %d unserved: %s", len(s.Unserved), strings.Join(s.Unserved, ", "))))
	} else {
		b.WriteString(successStyle.Render("✓ all customers served"))
	}
	return statsBoxStyle.Render(b.String())
}

func objectiveLine(s report.Summary) string {
	if s.SolverNodes > 0 {
		return fmt.Sprintf("%g (%s, %d nodes)", s.Objective, s.Status, s.SolverNodes)
	}
	return fmt.Sprintf("%g (%s)", s.Objective, s.Status)
}
