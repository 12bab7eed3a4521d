// Package threshold classifies telemetry readings into alert levels.
package threshold

import (
	"fmt"
	"strings"
)

// Metric identifies one of the tracked telemetry fields.
type Metric int

const (
	Temperature Metric = iota
	Humidity
	Pressure
	AirQuality
)

// All lists the metrics in display order.
var All = []Metric{Temperature, Humidity, Pressure, AirQuality}

var metricInfo = map[Metric]struct {
	key, label, unit string
}{
	Temperature: {"temperature", "Temperature", "°C"},
	Humidity:    {"humidity", "Humidity", "%"},
	Pressure:    {"pressure", "Pressure", "hPa"},
	AirQuality:  {"aqi", "Air Quality", "AQI"},
}

// String returns the metric's stable key, used in URLs, topics and config.
func (m Metric) String() string {
	if info, ok := metricInfo[m]; ok {
		return info.key
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Label is the human title of the metric.
func (m Metric) Label() string {
	return metricInfo[m].label
}

// Unit is the display unit.
func (m Metric) Unit() string {
	return metricInfo[m].unit
}

// ParseMetric accepts a metric key or label, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range All {
		info := metricInfo[m]
		if s == info.key || s == strings.ToLower(info.label) {
			return m, nil
		}
	}
	switch s {
	case "temp":
		return Temperature, nil
	case "air", "air_quality", "airquality":
		return AirQuality, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Level is the severity of a classified reading.
type Level int

const (
	Normal Level = iota
	LightPollution
	Warning
	Danger
)

// Severity orders levels; higher is worse.
func (l Level) Severity() int {
	return int(l)
}

func (l Level) String() string {
	switch l {
	case Normal:
		return "normal"
	case LightPollution:
		return "light_pollution"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	}
	return "unknown"
}

// Tone is the colour tag a level renders with.
type Tone string

const (
	ToneNormal  Tone = "normal"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Status is the derived classification of one value.
type Status struct {
	Level Level
	Label string
	Tone  Tone
}

// Table holds the static bounds for a symmetric metric.
type Table struct {
	Min, Max         float64
	WarnMin, WarnMax float64
}

// Center is the midpoint of the warning band.
func (t Table) Center() float64 {
	return (t.WarnMin + t.WarnMax) / 2
}

// Tables are the bounds for every metric. Air quality uses its own ladder,
// its entry only records the scale for charts.
var Tables = map[Metric]Table{
	Temperature: {Min: 15, Max: 35, WarnMin: 18, WarnMax: 30},
	Humidity:    {Min: 30, Max: 80, WarnMin: 40, WarnMax: 70},
	Pressure:    {Min: 980, Max: 1030, WarnMin: 990, WarnMax: 1020},
	AirQuality:  {Min: 0, Max: 200, WarnMin: 0, WarnMax: 150},
}

// Air quality ladder steps.
const (
	AQIDanger         = 200
	AQIWarning        = 150
	AQILightPollution = 100
)

// Classify maps a value of metric m to its status.
func Classify(m Metric, v float64) Status {
	if m == AirQuality {
		return classifyAQI(v)
	}
	t := Tables[m]
	switch {
	case v <= t.Min || v >= t.Max:
		return Status{Level: Danger, Label: "Danger", Tone: ToneDanger}
	case v < t.WarnMin || v > t.WarnMax:
		return Status{Level: Warning, Label: "Warning", Tone: ToneWarning}
	default:
		return Status{Level: Normal, Label: "Normal", Tone: ToneNormal}
	}
}

func classifyAQI(v float64) Status {
	switch {
	case v > AQIDanger:
		return Status{Level: Danger, Label: "Danger", Tone: ToneDanger}
	case v > AQIWarning:
		return Status{Level: Warning, Label: "Warning", Tone: ToneWarning}
	case v > AQILightPollution:
		return Status{Level: LightPollution, Label: "Light pollution", Tone: ToneWarning}
	default:
		return Status{Level: Normal, Label: "Good", Tone: ToneNormal}
	}
}
