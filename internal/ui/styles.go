package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#6B7280") // Gray
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#9CA3AF") // Light gray
	ColorBlue      = lipgloss.Color("#3B82F6") // Blue
)

// NamedColors maps color names to lipgloss colors.
var NamedColors = map[string]lipgloss.Color{
	"green":  ColorSuccess,
	"yellow": ColorWarning,
	"red":    ColorDanger,
	"gray":   ColorSecondary,
	"grey":   ColorSecondary,
	"blue":   ColorBlue,
	"purple": ColorPrimary,
}

// ResolveColor converts a color name or hex code to a lipgloss.Color.
// Unknown names fall back to the muted color.
func ResolveColor(color string) lipgloss.Color {
	if strings.HasPrefix(color, "#") {
		return lipgloss.Color(color)
	}
	if c, ok := NamedColors[strings.ToLower(color)]; ok {
		return c
	}
	return ColorMuted
}

// IsValidColor returns true if the color is a valid named color or hex code.
func IsValidColor(color string) bool {
	if strings.HasPrefix(color, "#") {
		// #RGB or #RRGGBB
		return len(color) == 4 || len(color) == 7
	}
	_, ok := NamedColors[strings.ToLower(color)]
	return ok
}

// Text styles
var (
	Muted     = lipgloss.NewStyle().Foreground(ColorMuted)
	Secondary = lipgloss.NewStyle().Foreground(ColorSecondary)
)

// Title style
var Title = lipgloss.NewStyle().Bold(true)

// Author style
var Author = lipgloss.NewStyle().Foreground(ColorPrimary)

// HeaderCol styles table column headers.
var HeaderCol = lipgloss.NewStyle().Foreground(ColorMuted)

// RenderGenre returns the genre name as styled text in the given color.
func RenderGenre(genre, color string) string {
	return lipgloss.NewStyle().Foreground(ResolveColor(color)).Render(genre)
}

// RenderGenres renders a list of genres separated by commas, coloring each
// one with colorOf.
func RenderGenres(genres []string, colorOf func(string) string) string {
	parts := make([]string, len(genres))
	for i, g := range genres {
		parts[i] = RenderGenre(g, colorOf(g))
	}
	return strings.Join(parts, Muted.Render(", "))
}

// RenderYear renders an optional year, or a muted dash when unknown.
func RenderYear(year *int) string {
	if year == nil {
		return Muted.Render("-")
	}
	return Secondary.Render(strconv.Itoa(*year))
}

// Truncate shortens s to maxLen runes, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
