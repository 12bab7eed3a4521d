package feed

import (
	"github.com/montanaflynn/stats"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// Stats summarises one metric over a window of readings.
type Stats struct {
	Metric  threshold.Metric
	Count   int
	Current float64
	Min     float64
	Max     float64
	Mean    float64
	Values  []float64
}

// WindowStats computes Stats for metric m over the last n readings.
func (s *Snapshot) WindowStats(m threshold.Metric, n int) (Stats, error) {
	values := s.Series(m, n)
	if len(values) == 0 {
		return Stats{Metric: m}, errors.New(errors.ErrMissingElement,
			"No readings for "+m.Label(),
			"Wait for the first successful fetch")
	}
	return Summarize(m, values)
}

// Summarize computes min, max and mean of values. The last value is taken
// as current.
func Summarize(m threshold.Metric, values []float64) (Stats, error) {
	out := Stats{Metric: m, Count: len(values), Values: values}
	if len(values) == 0 {
		return out, errors.New(errors.ErrMissingElement, "No readings for "+m.Label(), "")
	}
	out.Current = values[len(values)-1]

	var err error
	if out.Min, err = stats.Min(values); err != nil {
		return out, errors.WrapWithCode(err, errors.ErrParse, "Cannot compute minimum", "")
	}
	if out.Max, err = stats.Max(values); err != nil {
		return out, errors.WrapWithCode(err, errors.ErrParse, "Cannot compute maximum", "")
	}
	if out.Mean, err = stats.Mean(values); err != nil {
		return out, errors.WrapWithCode(err, errors.ErrParse, "Cannot compute mean", "")
	}
	return out, nil
}
