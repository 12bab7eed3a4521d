package monitor

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleField_StaysInBounds(t *testing.T) {
	f := newParticleField(42)
	f.Resize(30)
	require.Len(t, f.parts, particleCount)

	for i := 0; i < 500; i++ {
		f.Step()
	}
	for _, p := range f.parts {
		assert.GreaterOrEqual(t, p.x, 0.0)
		assert.Less(t, p.x, f.dotsWide())
		assert.GreaterOrEqual(t, p.y, 0.0)
		assert.Less(t, p.y, particleDotsHigh)
	}
}

func TestParticleField_SeedIsDeterministic(t *testing.T) {
	a, b := newParticleField(7), newParticleField(7)
	a.Resize(20)
	b.Resize(20)
	for i := 0; i < 10; i++ {
		a.Step()
		b.Step()
	}
	assert.Equal(t, a.Render(), b.Render())
}

func TestParticleField_RenderWidth(t *testing.T) {
	f := newParticleField(1)
	assert.Empty(t, f.Render(), "unsized field renders nothing")

	f.Resize(25)
	assert.Equal(t, 25, lipgloss.Width(f.Render()))

	// Shrinking keeps every particle inside the strip
	f.Resize(5)
	assert.Equal(t, 5, lipgloss.Width(f.Render()))
	for _, p := range f.parts {
		assert.Less(t, p.x, f.dotsWide())
	}
}
