// Package display derives the panel label, tooltip and color category from
// the latest Nightscout data
package display

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrcode/nightscout-panel/internal/models"
)

const (
	labelPrefix  = "BG: "
	emptyValue   = "?"
	unknownBatt  = "Battery: ?%"
	staleSpacing = "   "
)

// ComposeLabel builds "BG: <value> <glyph>", prefixed with a staleness
// warning when the last known reading is older than the configured window
func ComposeLabel(reading, last *models.Reading, settings *models.Settings, now time.Time) string {
	var b strings.Builder

	if settings.ShowMissing && last != nil {
		staleness := models.CheckStaleness(last.TimestampMs, now.UnixMilli(), settings.ShowMissingInterval)
		if staleness.Stale {
			fmt.Fprintf(&b, "!Last %d m ago!%s", staleness.MinutesAgo, staleSpacing)
		}
	}

	b.WriteString(labelPrefix)

	if reading.IsEmpty() {
		b.WriteString(emptyValue)
		return b.String()
	}

	value := models.ToPreferredUnits(reading.SGV, settings.UseMmol)
	b.WriteString(models.FormatValue(value, settings.UseMmol))

	if glyph := reading.Trend.Symbol(); glyph != "" {
		b.WriteString(" ")
		b.WriteString(glyph)
	}

	return b.String()
}

// ComposeTooltip lists the last update time, uploader device and battery
func ComposeTooltip(last *models.Reading, status *models.DeviceStatus) string {
	var lines []string

	if last != nil {
		lines = append(lines, "Last update: "+last.Time().UTC().Format(http.TimeFormat))
	}

	if status != nil && status.DeviceName != "" {
		lines = append(lines, "Device: "+status.DeviceName)
	}

	if status != nil && status.UploaderBatteryPct != nil {
		lines = append(lines, fmt.Sprintf("Battery: %d%%", *status.UploaderBatteryPct))
	} else {
		lines = append(lines, unknownBatt)
	}

	return strings.Join(lines, "\n")
}

// Category classifies the reading in the user's display unit
func Category(reading *models.Reading, settings *models.Settings) models.ColorCategory {
	if reading.IsEmpty() {
		return models.CategoryNormal
	}
	value := models.ToPreferredUnits(reading.SGV, settings.UseMmol)
	return models.Classify(value, settings.LowThreshold, settings.HighThreshold)
}

// Compose derives the complete display state for one refresh cycle
func Compose(reading, last *models.Reading, status *models.DeviceStatus, settings *models.Settings, now time.Time) *models.DisplayState {
	category := Category(reading, settings)

	return &models.DisplayState{
		Label:     ComposeLabel(reading, last, settings, now),
		Tooltip:   ComposeTooltip(last, status),
		Category:  category,
		Color:     settings.StyleColor(category),
		UpdatedAt: now,
	}
}
