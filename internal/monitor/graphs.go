package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Series is one line on a trend chart.
type Series struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
	Right  bool // plotted against the right axis
}

// AxisRange is the value span of one chart axis.
type AxisRange struct {
	Min, Max float64
}

// findMinMax returns the minimum and maximum finite values. ok is false when
// there are none.
func findMinMax(data []float64) (minVal, maxVal float64, ok bool) {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			minVal, maxVal, ok = v, v, true
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal, ok
}

// axisFor combines the ranges of every series on one side. A flat range is
// widened by one unit each way so the line sits mid-chart.
func axisFor(series []Series, right bool) (AxisRange, bool) {
	var r AxisRange
	found := false
	for _, s := range series {
		if s.Right != right {
			continue
		}
		lo, hi, ok := findMinMax(s.Values)
		if !ok {
			continue
		}
		if !found {
			r = AxisRange{Min: lo, Max: hi}
			found = true
			continue
		}
		r.Min = math.Min(r.Min, lo)
		r.Max = math.Max(r.Max, hi)
	}
	if found && r.Max == r.Min {
		r.Min--
		r.Max++
	}
	return r, found
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// brailleCanvas is a grid of braille cells addressed in dot coordinates,
// origin bottom-left.
type brailleCanvas struct {
	width, height int // in cells
	cells         [][]rune
	colors        [][]lipgloss.Color
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	c := &brailleCanvas{
		width:  width,
		height: height,
		cells:  make([][]rune, height),
		colors: make([][]lipgloss.Color, height),
	}
	for i := range c.cells {
		c.cells[i] = make([]rune, width)
		c.colors[i] = make([]lipgloss.Color, width)
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBase
		}
	}
	return c
}

func (c *brailleCanvas) dotsWide() int { return c.width * 2 }
func (c *brailleCanvas) dotsHigh() int { return c.height * 4 }

// set lights the dot at (x, y). Out of range dots are ignored.
func (c *brailleCanvas) set(x, y int, color lipgloss.Color) {
	if x < 0 || y < 0 || x >= c.dotsWide() || y >= c.dotsHigh() {
		return
	}
	row := c.height - 1 - y/4
	subRow := 3 - y%4
	col := x / 2
	c.cells[row][col] |= rune(1 << brailleDots[subRow][x%2])
	c.colors[row][col] = color
}

// line draws a straight segment between two dots.
func (c *brailleCanvas) line(x0, y0, x1, y1 int, color lipgloss.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lines renders the canvas, one string per row.
func (c *brailleCanvas) lines() []string {
	out := make([]string, c.height)
	for r, row := range c.cells {
		var b strings.Builder
		for col, ch := range row {
			if ch == brailleBase {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(c.colors[r][col]).Render(string(ch)))
		}
		out[r] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// plotX spreads n points across the canvas, right-aligned when there are
// fewer points than dot columns.
func plotX(i, n, dots int) int {
	if n <= 1 {
		return dots - 1
	}
	if n > dots {
		return int(math.Round(float64(i) * float64(dots-1) / float64(n-1)))
	}
	return dots - n + i
}

// RenderTrendChart draws every series as a braille line. Left and right
// series are scaled to their own axis. It returns one string per row.
func RenderTrendChart(series []Series, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	c := newBrailleCanvas(width, height)
	left, _ := axisFor(series, false)
	right, _ := axisFor(series, true)

	for _, s := range series {
		axis := left
		if s.Right {
			axis = right
		}
		values := s.Values
		if len(values) > c.dotsWide() {
			values = resampleData(values, c.dotsWide())
		}

		prevX, prevY, havePrev := 0, 0, false
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				havePrev = false
				continue
			}
			x := plotX(i, len(values), c.dotsWide())
			y := clampInt(int(math.Round(normalizeValue(v, axis.Min, axis.Max)*float64(c.dotsHigh()-1))), c.dotsHigh()-1)
			if havePrev {
				c.line(prevX, prevY, x, y, s.Color)
			} else {
				c.set(x, y, s.Color)
			}
			prevX, prevY, havePrev = x, y, true
		}
	}
	return c.lines()
}

// RenderBrailleArea renders data as a filled braille graph scaled to
// [lo, hi]. Each character holds 2 data points with 4 vertical levels per row.
func RenderBrailleArea(data []float64, width, height int, lo, hi float64, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2

	// Only downsample; shorter data fills from the right.
	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		if math.IsNaN(val) {
			continue
		}
		normalized := normalizeValue(val, lo, hi)
		// Keep at least one dot so the minimum is visible.
		dotHeight := clampInt(int(math.Round(normalized*float64(totalDots-1)))+1, totalDots)

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		subCol := (i + horizOffset) % 2

		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, 0, height)
	for _, row := range grid {
		lines = append(lines, style.Render(string(row)))
	}
	return strings.Join(lines, "\n")
}

// RenderMiniSparkline renders a single-row sparkline using block characters,
// scaled to the data's own range.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal, ok := findMinMax(data)
	if !ok {
		return ""
	}
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// resampleData resamples data to the target size.
// When downsampling, uses max-based sampling to preserve peaks.
// When upsampling, uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
