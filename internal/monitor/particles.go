package monitor

import (
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const particleCount = 50

// particleColors cycle per particle index.
var particleColors = []lipgloss.Color{ColorAccent, ColorAccentDim, ColorGraph}

type particle struct {
	x, y   float64 // dot coordinates
	vx, vy float64 // dots per frame
}

// particleField is a one-row braille strip of bouncing dots.
type particleField struct {
	rng   *rand.Rand
	parts []particle
	cols  int
}

func newParticleField(seed uint64) *particleField {
	return &particleField{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (f *particleField) dotsWide() float64 { return float64(f.cols * 2) }

const particleDotsHigh = 4.0

// Resize fits the field to cols cells, scattering particles on first use
// and clamping existing ones.
func (f *particleField) Resize(cols int) {
	if cols < 1 {
		cols = 1
	}
	f.cols = cols
	if f.parts == nil {
		f.parts = make([]particle, particleCount)
		for i := range f.parts {
			f.parts[i] = particle{
				x:  f.rng.Float64() * f.dotsWide(),
				y:  f.rng.Float64() * particleDotsHigh,
				vx: (f.rng.Float64()*2 - 1) * 0.8,
				vy: (f.rng.Float64()*2 - 1) * 0.3,
			}
		}
		return
	}
	for i := range f.parts {
		p := &f.parts[i]
		if p.x >= f.dotsWide() {
			p.x = f.dotsWide() - 1
		}
	}
}

// Step moves every particle one frame, bouncing off the strip edges.
func (f *particleField) Step() {
	maxX := f.dotsWide()
	for i := range f.parts {
		p := &f.parts[i]
		p.x += p.vx
		p.y += p.vy
		if p.x < 0 {
			p.x, p.vx = -p.x, -p.vx
		}
		if p.x >= maxX {
			p.x, p.vx = 2*maxX-p.x-0.001, -p.vx
		}
		if p.y < 0 {
			p.y, p.vy = -p.y, -p.vy
		}
		if p.y >= particleDotsHigh {
			p.y, p.vy = 2*particleDotsHigh-p.y-0.001, -p.vy
		}
	}
}

// Render draws the strip. Cells shared by several particles take the colour
// of the last one drawn.
func (f *particleField) Render() string {
	if f.cols == 0 {
		return ""
	}
	c := newBrailleCanvas(f.cols, 1)
	for i, p := range f.parts {
		c.set(int(p.x), int(p.y), particleColors[i%len(particleColors)])
	}
	return strings.Join(c.lines(), "")
}
