// Package realtime provides the situational data that grounds replies in the
// present: clock, local weather, news headlines, and the event-bus-fed feed
// of weather readings, headlines and alerts.
package realtime

import (
	"errors"
	"time"
)

// ErrUnavailable is returned when an upstream data source cannot answer.
var ErrUnavailable = errors.New("realtime data unavailable")

const (
	timeLayout      = "03:04 PM"
	dateLayout      = "Monday, January 02, 2006"
	formattedLayout = dateLayout + " at " + timeLayout
)

// TimeInfo describes the current local date and time.
type TimeInfo struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	DayOfWeek string `json:"day_of_week"`
	Month     string `json:"month"`
	Year      int    `json:"year"`
	Formatted string `json:"formatted"`
}

// NewTimeInfo formats t.
func NewTimeInfo(t time.Time) TimeInfo {
	return TimeInfo{
		Date:      t.Format(dateLayout),
		Time:      t.Format(timeLayout),
		DayOfWeek: t.Weekday().String(),
		Month:     t.Month().String(),
		Year:      t.Year(),
		Formatted: t.Format(formattedLayout),
	}
}

// Weather is a human readable current-conditions report.
type Weather struct {
	Location    string `json:"location"`
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feels_like"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Mock        bool   `json:"mock"`
}

// Headline is one news article.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// News is a set of top headlines for a category.
type News struct {
	Category  string     `json:"category"`
	Headlines []Headline `json:"headlines"`
	Count     int        `json:"count"`
	Mock      bool       `json:"mock"`
	Message   string     `json:"message,omitempty"`
}
