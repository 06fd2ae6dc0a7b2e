package main

import "github.com/charmbracelet/lipgloss"

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"})

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#3F25D5", Dark: "#ABA6F9"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED567A"))

	paragraphStyle = lipgloss.NewStyle().
			Margin(1, 2)
)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

func subtle(s string) string {
	return subtleStyle.Render(s)
}

func statusLine(s string) string {
	return statusStyle.Render("• " + s)
}

func errorLine(s string) string {
	return errorStyle.Render("! " + s)
}

func paragraph(s string) string {
	return paragraphStyle.Render(s)
}
