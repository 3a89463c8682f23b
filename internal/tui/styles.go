package tui

import "charm.land/lipgloss/v2"

// Semantic color palette — grayscale "suit and tie" with a single accent.
var (
	// Accent — used sparingly: cursor, spinner, active indicators.
	ColorHighlight = lipgloss.Color("#00E5CC")

	// Backgrounds
	ColorBg = lipgloss.Color("#000000") // Pure black — consistent everywhere

	// Foregrounds (grayscale ramp, light to dark)
	ColorFg      = lipgloss.Color("#c8c8c8") // Primary text
	ColorMuted   = lipgloss.Color("#6e6e6e") // Secondary / reasoning
	ColorDim     = lipgloss.Color("#3f3f3f") // Tertiary / timestamps
	ColorBorder  = lipgloss.Color("#1c1c1c") // Borders and dividers
	ColorSurface = ColorHighlight            // Selection highlight — reuse accent

	// Semantic aliases
	ColorError = lipgloss.Color("#932e2e")
	ColorAdd   = lipgloss.Color("#3fae5a")
	ColorDel   = lipgloss.Color("#932e2e")
)

// Styles holds all pre-built lipgloss styles used across the TUI.
// Constructed once, stored in Model, avoids repeated allocations.
type Styles struct {
	// Text
	Text  lipgloss.Style // Primary text
	Muted lipgloss.Style // Secondary text
	Dim   lipgloss.Style // Timestamps, placeholders
	Error lipgloss.Style // Errors

	// Layout
	Border    lipgloss.Style // Divider, separator lines
	Selection lipgloss.Style // Selected file-list row
	BgFill    lipgloss.Style // Pure black background fill for empty areas

	// Diff gutter
	GutterAdd    lipgloss.Style
	GutterDelete lipgloss.Style
	GutterChange lipgloss.Style

	// Status bar
	StatusText lipgloss.Style // Status bar text
}

// DefaultStyles builds the complete style set.
func DefaultStyles() Styles {
	bg := lipgloss.NewStyle().Background(ColorBg)
	return Styles{
		Text:  bg.Foreground(ColorFg),
		Muted: bg.Foreground(ColorMuted),
		Dim:   bg.Foreground(ColorDim),
		Error: bg.Foreground(ColorError),

		Border:    bg.Foreground(ColorBorder),
		Selection: lipgloss.NewStyle().Background(ColorSurface).Foreground(ColorBg),
		BgFill:    bg,

		GutterAdd:    bg.Foreground(ColorAdd),
		GutterDelete: bg.Foreground(ColorDel),
		GutterChange: bg.Foreground(ColorHighlight),

		StatusText: bg.Foreground(ColorDim),
	}
}
