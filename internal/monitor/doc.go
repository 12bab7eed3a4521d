// Package monitor implements the terminal dashboard for a ThingSpeak
// environment channel.
//
// The dashboard shows one card per metric (temperature, humidity, pressure,
// air quality) with its latest value and status, a braille trend chart over
// the last readings and a detail view with window statistics.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: snapshot, card animation state, selection, detail view
//   - Update: keystrokes, window size, snapshots, animation frames
//   - View: renders the current state to a string
//
// The model never fetches. A scheduler outside the program fetches and
// sends SnapshotMsg or FetchErrMsg through tea.Program.Send.
//
// # Animation
//
// Card values ease toward new readings with a harmonica spring and cards
// enter one after another. The detail view grows and shrinks through
// opening and closing phases. Frames only tick while something moves, or
// while the particle strip is on. Options.Animate=false settles everything
// immediately.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh now
//	←/h, →/l    - Select card
//	1-4         - Open a metric
//	Enter       - Open the selected card
//	Esc         - Close detail / help
//	p           - Toggle particles
//	?           - Toggle help overlay
package monitor
