package monitor

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// CardSlot describes where and how one metric is displayed.
type CardSlot struct {
	Title string
	Unit  string
	Key   string // hotkey that opens the detail view
	Color lipgloss.Color
}

// Slots maps every metric to its card.
type Slots map[threshold.Metric]CardSlot

// DefaultSlots returns the four standard cards, hotkeys 1-4 in display order.
func DefaultSlots() Slots {
	colors := map[threshold.Metric]lipgloss.Color{
		threshold.Temperature: ColorTemperature,
		threshold.Humidity:    ColorHumidity,
		threshold.Pressure:    ColorPressure,
		threshold.AirQuality:  ColorAirQuality,
	}

	s := make(Slots, len(threshold.All))
	for i, m := range threshold.All {
		s[m] = CardSlot{
			Title: m.Label(),
			Unit:  m.Unit(),
			Key:   fmt.Sprintf("%d", i+1),
			Color: colors[m],
		}
	}
	return s
}

// Validate checks that each metric has a slot with a title. Hotkeys must be
// unique when set.
func (s Slots) Validate() error {
	keys := make(map[string]threshold.Metric)
	for _, m := range threshold.All {
		slot, ok := s[m]
		if !ok {
			return errors.New(errors.ErrMissingElement,
				fmt.Sprintf("No dashboard card for %s", m.Label()),
				"Every metric needs a card slot; start from monitor.DefaultSlots()")
		}
		if slot.Title == "" {
			return errors.New(errors.ErrMissingElement,
				fmt.Sprintf("Card for %s has no title", m),
				"Set CardSlot.Title")
		}
		if slot.Key == "" {
			continue
		}
		if other, dup := keys[slot.Key]; dup {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Hotkey %q is used by both %s and %s", slot.Key, other, m),
				"Give each card its own hotkey")
		}
		keys[slot.Key] = m
	}
	return nil
}

// metricForKey returns the metric whose hotkey is k.
func (s Slots) metricForKey(k string) (threshold.Metric, bool) {
	for _, m := range threshold.All {
		if slot, ok := s[m]; ok && slot.Key != "" && slot.Key == k {
			return m, true
		}
	}
	return 0, false
}
