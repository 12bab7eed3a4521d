package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows an animated label on one terminal line until it is resolved
// with Success or Fail. A nil writer makes every method a no-op, so callers
// can disable it for non-TTY output without branching.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	state     SpinnerState
	frame     int
	startTime time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	lastWidth int
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins the animation. Calling Start twice is harmless.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.w == nil || s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

// stop halts the animation goroutine and waits for it to exit.
func (s *Spinner) stop() bool {
	s.mu.Lock()
	if s.state != SpinnerInProgress {
		s.mu.Unlock()
		return false
	}
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
	return true
}

// Success resolves the spinner with a check mark and the elapsed time.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess, "")
}

// Fail resolves the spinner with a cross and an optional reason.
func (s *Spinner) Fail(reason string) {
	s.finish(SpinnerFailed, reason)
}

func (s *Spinner) finish(state SpinnerState, reason string) {
	if !s.stop() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol, style := SymbolSuccess, SuccessStyle()
	if state == SpinnerFailed {
		symbol, style = SymbolFail, ErrorStyle()
	}

	line := fmt.Sprintf("%s %s %s", style.Render(symbol), s.label,
		MutedStyle().Render(formatDuration(time.Since(s.startTime))))
	if reason != "" {
		line += " " + ErrorStyle().Render(reason)
	}
	s.clearLocked()
	fmt.Fprintln(s.w, line)
}

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]) + " " + s.label + "..."
	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastWidth = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastWidth == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
	s.lastWidth = 0
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
