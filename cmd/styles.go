package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/neuralguard/internal"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var planBadgeColors = map[internal.Plan]lipgloss.Color{
	internal.PlanFree:       lipgloss.Color("245"),
	internal.PlanPro:        lipgloss.Color("99"),
	internal.PlanEnterprise: lipgloss.Color("220"),
}

func planBadge(plan internal.Plan) string {
	color, ok := planBadgeColors[plan]
	if !ok {
		color = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render("[" + string(plan) + "]")
}

// scoreStyle colours a score the way the risk bands read
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return successStyle
	case score >= 60:
		return warningStyle
	default:
		return errorStyle
	}
}

var severityStyles = map[internal.Severity]lipgloss.Style{
	internal.SeverityCritical: errorStyle,
	internal.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	internal.SeverityMedium:   warningStyle,
	internal.SeverityLow:      infoStyle,
}

// shortAddress renders 0x7a25...488D; anything that is not an address is
// returned as is
func shortAddress(address string) string {
	if !strings.HasPrefix(address, "0x") || len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
