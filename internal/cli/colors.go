package cli

import "github.com/charmbracelet/lipgloss"

// Scope colour palette
// Shared theme colours for consistent branding across CLI and TUI
var (
	ScopeAmber = lipgloss.Color("#F8B31D") // Brand amber
	ScopeGreen = lipgloss.Color("#3BD16F") // Trace green
	ScopeRed   = lipgloss.Color("#A40000") // Error red
	ScopeSlate = lipgloss.Color("#333B3B") // Bezel slate

	// Accent colours
	WarmGray = lipgloss.Color("#B8860B") // Dark goldenrod for subtle text
)
