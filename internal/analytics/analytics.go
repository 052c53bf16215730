// Package analytics aggregates wellbeing and safety records into the
// dashboard payloads. All functions are pure over already-fetched data;
// store access stays with the callers.
package analytics

import (
	"time"

	"github.com/campuspulse/campuspulse/internal/models"
)

// TrendPoint is one day of averaged mood check-ins.
type TrendPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD, local time
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// MoodTrend buckets entries into daily averages over the trailing window
// ending at now. Days without check-ins appear with a zero average so the
// chart keeps a continuous axis.
func MoodTrend(entries []models.MoodEntry, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		days = 7
	}

	sums := make(map[string]int, days)
	counts := make(map[string]int, days)
	for _, entry := range entries {
		day := time.UnixMilli(entry.Timestamp).In(now.Location()).Format("2006-01-02")
		sums[day] += entry.Mood.Value()
		counts[day]++
	}

	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		point := TrendPoint{Date: day, Count: counts[day]}
		if point.Count > 0 {
			point.Average = float64(sums[day]) / float64(point.Count)
		}
		points = append(points, point)
	}
	return points
}

// SeverityFrequency reshapes a severity histogram for the dashboard. Every
// severity level is present even when its count is zero.
func SeverityFrequency(counts map[models.Severity]int) map[string]int {
	freq := map[string]int{
		string(models.SeverityLow):      0,
		string(models.SeverityMedium):   0,
		string(models.SeverityHigh):     0,
		string(models.SeverityCritical): 0,
	}
	for severity, count := range counts {
		freq[string(severity)] = count
	}
	return freq
}

// AccessibilityUsage counts how many accounts have each accessibility
// setting enabled.
func AccessibilityUsage(users []models.User) map[string]int {
	usage := map[string]int{
		"high_contrast":  0,
		"dyslexia_font":  0,
		"focus_mode":     0,
		"speech_enabled": 0,
	}
	for _, user := range users {
		if user.Preferences.HighContrast {
			usage["high_contrast"]++
		}
		if user.Preferences.DyslexiaFont {
			usage["dyslexia_font"]++
		}
		if user.Preferences.FocusMode {
			usage["focus_mode"]++
		}
		if user.Preferences.SpeechEnabled {
			usage["speech_enabled"]++
		}
	}
	return usage
}

// ActivitySnapshot is the raw activity volume over a trailing window, fed to
// the anomaly monitor.
type ActivitySnapshot struct {
	WindowHours int `json:"window_hours"`
	SOSAlerts   int `json:"sos_alerts"`
	Incidents   int `json:"incidents"`
	MoodEntries int `json:"mood_entries"`
}

// DashboardStats is the admin analytics payload.
type DashboardStats struct {
	TotalUsers         int               `json:"total_users"`
	TotalIncidents     int               `json:"total_incidents"`
	ActiveSOSAlerts    int               `json:"active_sos_alerts"`
	MoodTrend          []TrendPoint      `json:"mood_trend"`
	SeverityFrequency  map[string]int    `json:"severity_frequency"`
	IncidentsByType    map[string]int    `json:"incidents_by_type"`
	AccessibilityUsage map[string]int    `json:"accessibility_usage"`
	RecentUsers        []models.Profile  `json:"recent_users"`
	RecentIncidents    []models.Incident `json:"recent_incidents"`
}
