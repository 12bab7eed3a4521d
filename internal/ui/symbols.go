package ui

// Status symbols used across command output.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarning  = "⚠"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
)
