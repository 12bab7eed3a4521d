// Package ui provides line-oriented terminal output for envdash's one-shot
// commands (snapshot, init, version). The full-screen dashboard lives in
// internal/monitor and shares this package's neon palette.
//
// # Components
//
//	Spinner      - animated indicator while a fetch is in flight
//	MetricTable  - bubbles table of current readings and window statistics
//	RenderHeader - branded title line with a divider
//
// Use DisableColors() for --no-color or non-TTY output.
package ui
