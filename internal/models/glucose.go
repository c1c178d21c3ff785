// Package models contains data structures used throughout the application
package models

import (
	"fmt"
	"time"
)

// mmolPerMgDLTenThousandths is the mg/dL to mmol/L factor 0.0555 scaled by 10^4
const mmolPerMgDLTenThousandths = 555

// TrendDirection is the rate-of-change category reported by the CGM
type TrendDirection string

// Trend directions as reported in the Nightscout "direction" field
const (
	TrendFlat          TrendDirection = "Flat"
	TrendFortyFiveUp   TrendDirection = "FortyFiveUp"
	TrendFortyFiveDown TrendDirection = "FortyFiveDown"
	TrendSingleUp      TrendDirection = "SingleUp"
	TrendSingleDown    TrendDirection = "SingleDown"
	TrendDoubleUp      TrendDirection = "DoubleUp"
	TrendDoubleDown    TrendDirection = "DoubleDown"
	TrendTripleUp      TrendDirection = "TripleUp"
	TrendTripleDown    TrendDirection = "TripleDown"
	TrendUnknown       TrendDirection = ""
)

var trendSymbols = map[TrendDirection]string{
	TrendFlat:          "→",
	TrendFortyFiveUp:   "⬈",
	TrendFortyFiveDown: "⬊",
	TrendSingleUp:      "↑",
	TrendSingleDown:    "↓",
	TrendDoubleUp:      "↑↑",
	TrendDoubleDown:    "↓↓",
	TrendTripleUp:      "↑↑↑",
	TrendTripleDown:    "↓↓↓",
}

// Symbol returns the display glyph for the trend, or "" when it has none
func (d TrendDirection) Symbol() string {
	return trendSymbols[d]
}

// Reading is a single sensor glucose value received from Nightscout
type Reading struct {
	ID          string         `json:"id"`
	SGV         int            `json:"sgv"` // Sensor glucose value in mg/dL
	Trend       TrendDirection `json:"trend"`
	TimestampMs int64          `json:"timestampMs"` // Unix timestamp in milliseconds
}

// IsEmpty reports whether there is no reading at all. A nil reading stands
// for an empty entries response.
func (r *Reading) IsEmpty() bool {
	return r == nil
}

// Time returns the time of the reading
func (r *Reading) Time() time.Time {
	return time.UnixMilli(r.TimestampMs)
}

// DeviceStatus describes the uploader that sent the latest data
type DeviceStatus struct {
	DeviceName         string `json:"deviceName,omitempty"`
	UploaderBatteryPct *int   `json:"uploaderBatteryPct,omitempty"`
}

// ToPreferredUnits converts a mg/dL value to the display unit.
// mmol/L values are rounded up to one decimal place.
func ToPreferredUnits(sgvMgDL int, useMmol bool) float64 {
	if !useMmol {
		return float64(sgvMgDL)
	}
	scaled := sgvMgDL * mmolPerMgDLTenThousandths
	tenths := scaled / 1000
	if scaled%1000 > 0 {
		tenths++
	}
	return float64(tenths) / 10
}

// FormatValue renders a converted value the way the label shows it
func FormatValue(value float64, useMmol bool) string {
	if useMmol {
		return fmt.Sprintf("%.1f", value)
	}
	return fmt.Sprintf("%d", int(value))
}

// Staleness is the outcome of a staleness check
type Staleness struct {
	Stale      bool
	MinutesAgo int
}

// CheckStaleness reports how many whole minutes have passed since the last
// reading and whether that exceeds thresholdMinutes
func CheckStaleness(lastTimestampMs, nowMs int64, thresholdMinutes int) Staleness {
	elapsed := nowMs - lastTimestampMs
	minutes := elapsed / 60000
	if elapsed < 0 && elapsed%60000 != 0 {
		minutes-- // floor, not truncation
	}
	return Staleness{
		Stale:      minutes > int64(thresholdMinutes),
		MinutesAgo: int(minutes),
	}
}

// ColorCategory is the threshold classification of a displayed value
type ColorCategory int

// Color categories
const (
	CategoryNormal ColorCategory = iota
	CategoryHigh
	CategoryLow
)

// String returns the lowercase name of the category
func (c ColorCategory) String() string {
	switch c {
	case CategoryHigh:
		return "high"
	case CategoryLow:
		return "low"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c ColorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ColorCategory) UnmarshalText(text []byte) error {
	switch string(text) {
	case "high":
		*c = CategoryHigh
	case "low":
		*c = CategoryLow
	case "normal", "":
		*c = CategoryNormal
	default:
		return fmt.Errorf("unknown color category %q", text)
	}
	return nil
}

// Classify compares value against thresholds given in the same unit.
// High wins when both thresholds match.
func Classify(value, lowThreshold, highThreshold float64) ColorCategory {
	switch {
	case value >= highThreshold:
		return CategoryHigh
	case value <= lowThreshold:
		return CategoryLow
	default:
		return CategoryNormal
	}
}

// DisplayState is what one refresh cycle pushes to the render surfaces
type DisplayState struct {
	Label     string        `json:"label"`
	Tooltip   string        `json:"tooltip"`
	Category  ColorCategory `json:"category"`
	Color     string        `json:"color,omitempty"` // Configured color for High/Low, empty for Normal
	UpdatedAt time.Time     `json:"updatedAt"`
}
