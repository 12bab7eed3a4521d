package monitor

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

const (
	frameRate     = 30
	frameInterval = time.Second / frameRate

	// staggerDelay separates the entrance of consecutive cards.
	staggerDelay = 100 * time.Millisecond

	settleDistance = 0.05
)

// valueSpring settles in roughly one second. modalSpring is a little
// quicker with some overshoot.
var (
	valueSpring = harmonica.NewSpring(harmonica.FPS(frameRate), 6.0, 1.0)
	modalSpring = harmonica.NewSpring(harmonica.FPS(frameRate), 10.0, 0.75)
)

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// easedValue is a number that moves toward its target one frame at a time.
type easedValue struct {
	pos, vel, target float64
	set              bool
}

// SetTarget retargets the value. The first target, non-finite values and
// animate=false jump straight there.
func (e *easedValue) SetTarget(v float64, animate bool) {
	e.target = v
	if !e.set || !animate || !isFinite(v) || !isFinite(e.pos) {
		e.pos, e.vel = v, 0
	}
	e.set = true
}

// Step advances one frame and snaps once close enough.
func (e *easedValue) Step() {
	if e.Settled() {
		e.pos, e.vel = e.target, 0
		return
	}
	e.pos, e.vel = valueSpring.Update(e.pos, e.vel, e.target)
	if e.Settled() {
		e.pos, e.vel = e.target, 0
	}
}

func (e easedValue) Settled() bool {
	if !isFinite(e.target) {
		return true
	}
	return math.Abs(e.pos-e.target) < settleDistance && math.Abs(e.vel) < settleDistance
}

func (e easedValue) Value() float64 { return e.pos }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
