package ui

import (
	"github.com/charmbracelet/lipgloss"

	"seller-dashboard/internal/domain"
)

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite).
	Background(colorBlue).
	Padding(0, 1)

var badgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite).
	Background(colorRed).
	Padding(0, 1)

var panelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder)

var itemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

var selectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(colorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(colorBlue)

var unreadStyle = lipgloss.NewStyle().Bold(true)

var mutedStyle = lipgloss.NewStyle().Foreground(colorGray)

var alertStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorRed)

// typeStyle colour-codes a notification type tag.
func typeStyle(t domain.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch t {
	case domain.NotifOrder:
		return base.Foreground(colorGreen)
	case domain.NotifProduct:
		return base.Foreground(colorBlue)
	case domain.NotifCustomer:
		return base.Foreground(colorYellow)
	default:
		return base.Foreground(colorGray)
	}
}
