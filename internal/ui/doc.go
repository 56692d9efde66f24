// Package ui holds the terminal styling shared by CLI commands.
//
// [Palette] wraps named [lipgloss] styles (title, ok, err, warn, help) and renders
// bordered tables for candidate rankings.
package ui
