package realtime

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

const (
	maxCachedNews   = 5
	maxCachedAlerts = 3
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherReading is the feed payload of eventstream.EventTypeWeather.
type WeatherReading struct {
	Type        string       `json:"type"`
	Temperature float64      `json:"temperature"`
	WindSpeed   float64      `json:"windspeed,omitempty"`
	WeatherCode int          `json:"weathercode"`
	Condition   string       `json:"condition,omitempty"`
	Location    *Coordinates `json:"location,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewsItem is the feed payload of eventstream.EventTypeNews.
type NewsItem struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is the feed payload of eventstream.EventTypeAlert.
type Alert struct {
	Type      string    `json:"type"`
	AlertType string    `json:"alert_type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of the Cache.
type Snapshot struct {
	Weather    *WeatherReading `json:"weather"`
	News       []NewsItem      `json:"news"`
	Alerts     []Alert         `json:"alerts"`
	LastUpdate *time.Time      `json:"last_update"`
}

// Cache holds the latest feed values: one weather reading, the five newest
// headlines and the three newest alerts.
type Cache struct {
	mu      sync.RWMutex
	weather *WeatherReading
	news    []NewsItem
	alerts  []Alert
	updated time.Time
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

// PutWeather replaces the current weather reading.
func (c *Cache) PutWeather(w WeatherReading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w.Type = "weather"
	c.weather = &w
	c.touch()
}

// PutNews prepends a headline, keeping the newest five.
func (c *Cache) PutNews(n NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n.Type = "news"
	c.news = prependBounded(c.news, n, maxCachedNews)
	c.touch()
}

// PutAlert prepends an alert, keeping the newest three.
func (c *Cache) PutAlert(a Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a.Type = "alert"
	c.alerts = prependBounded(c.alerts, a, maxCachedAlerts)
	c.touch()
}

// Apply routes a feed envelope to the matching Put method. It has the
// eventstream.Handler signature so a subscriber can feed the cache directly.
func (c *Cache) Apply(_ context.Context, _ string, ev *eventstream.Envelope) error {
	if ev == nil {
		return eventstream.ErrNilEvent
	}

	switch ev.EventType {
	case eventstream.EventTypeWeather:
		var w WeatherReading
		if err := ev.Decode(&w); err != nil {
			return err
		}
		c.PutWeather(w)
	case eventstream.EventTypeNews:
		var n NewsItem
		if err := ev.Decode(&n); err != nil {
			return err
		}
		c.PutNews(n)
	case eventstream.EventTypeAlert:
		var a Alert
		if err := ev.Decode(&a); err != nil {
			return err
		}
		c.PutAlert(a)
	default:
		return fmt.Errorf("unhandled event type %q", ev.EventType)
	}
	return nil
}

// Snapshot returns a copy of the cached values.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		News:   slices.Clone(c.news),
		Alerts: slices.Clone(c.alerts),
	}
	if s.News == nil {
		s.News = []NewsItem{}
	}
	if s.Alerts == nil {
		s.Alerts = []Alert{}
	}
	if c.weather != nil {
		w := *c.weather
		if w.Location != nil {
			loc := *w.Location
			w.Location = &loc
		}
		s.Weather = &w
	}
	if !c.updated.IsZero() {
		u := c.updated
		s.LastUpdate = &u
	}
	return s
}

// LastUpdate returns when the cache last changed; zero when never.
func (c *Cache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// touch must be called with mu held.
func (c *Cache) touch() {
	t := c.now().UTC()
	if !t.After(c.updated) {
		t = c.updated.Add(time.Nanosecond)
	}
	c.updated = t
}

func prependBounded[T any](s []T, v T, limit int) []T {
	out := make([]T, 0, min(len(s)+1, limit))
	out = append(out, v)
	return append(out, s[:min(len(s), limit-1)]...)
}
