package markup

import "github.com/charmbracelet/lipgloss"

var (
	cpMauve    = lipgloss.Color("#cba6f7")
	cpPeach    = lipgloss.Color("#fab387")
	cpYellow   = lipgloss.Color("#f9e2af")
	cpGreen    = lipgloss.Color("#a6e3a1")
	cpBlue     = lipgloss.Color("#89b4fa")
	cpLavender = lipgloss.Color("#b4befe")
	cpOverlay1 = lipgloss.Color("#7f849c")
	cpSurface2 = lipgloss.Color("#585b70")

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(cpLavender)
	headingBars  = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(cpBlue),
		lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		lipgloss.NewStyle().Bold(true).Foreground(cpGreen),
		lipgloss.NewStyle().Bold(true).Foreground(cpYellow),
	}
	linkStyle   = lipgloss.NewStyle().Foreground(cpBlue).Faint(true)
	quoteBar    = lipgloss.NewStyle().Foreground(cpOverlay1)
	markerStyle = lipgloss.NewStyle().Foreground(cpOverlay1)
	ruleStyle   = lipgloss.NewStyle().Foreground(cpSurface2)
	codeStyle   = lipgloss.NewStyle().Foreground(cpPeach)
	tableBorder = lipgloss.NewStyle().Foreground(cpSurface2)
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(cpYellow)
	mediaStyle  = lipgloss.NewStyle().Foreground(cpMauve).Italic(true)
)
