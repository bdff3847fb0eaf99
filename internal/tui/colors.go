package tui

// Color constants for the grindtimer TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	ColorPrimaryText   = "#E6EAF2" // Titles, field labels, user input
	ColorSecondaryText = "#B1B8C7" // Subtle purple-tinted grey
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	ColorAccentMain   = "#7C3AED" // Accent elements, active borders
	ColorAccentBright = "#A78BFA" // Highlights, running timer

	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)
