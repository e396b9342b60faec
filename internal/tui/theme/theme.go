package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/snoo-cli/internal/entity"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	Score      lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	TitlePost     lipgloss.Style
	TitleStickied lipgloss.Style
	TitleNSFW     lipgloss.Style
	TitleOther    lipgloss.Style

	Author lipgloss.Style
	More   lipgloss.Style
	Match  lipgloss.Style
	Gutter []lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpSky := lipgloss.Color("#89dceb")
	cpBlue := lipgloss.Color("#89b4fa")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	gutter := make([]lipgloss.Style, 0, 6)
	for _, c := range []lipgloss.Color{cpBlue, cpGreen, cpYellow, cpPeach, cpMauve, cpTeal} {
		gutter = append(gutter, lipgloss.NewStyle().Foreground(c))
	}

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Score:      lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		TitlePost:  lipgloss.NewStyle().Bold(true).Foreground(cpText),
		TitleStickied: lipgloss.NewStyle().
			Bold(true).
			Foreground(cpGreen),
		TitleNSFW:  lipgloss.NewStyle().Italic(true).Foreground(cpRosewater),
		TitleOther: lipgloss.NewStyle().Foreground(cpSubtext0),
		Author:     lipgloss.NewStyle().Foreground(cpSky),
		More:       lipgloss.NewStyle().Italic(true).Foreground(cpLavender),
		Match:      lipgloss.NewStyle().Foreground(cpSurface0).Background(cpYellow),
		Gutter:     gutter,
	}
}

func (t Theme) StyleEntityTitle(e entity.Entity, title string) string {
	if title == "" {
		return title
	}
	post, ok := e.(entity.Post)
	if !ok {
		return t.TitleOther.Render(title)
	}
	switch {
	case post.Stickied:
		return t.TitleStickied.Render(title)
	case post.Over18:
		return t.TitleNSFW.Render(title)
	default:
		return t.TitlePost.Render(title)
	}
}

// GutterStyle colours the indentation bar of a comment by depth.
func (t Theme) GutterStyle(depth int) lipgloss.Style {
	if len(t.Gutter) == 0 || depth < 0 {
		return lipgloss.NewStyle()
	}
	return t.Gutter[depth%len(t.Gutter)]
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
