package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWeatherURL is the Open-Meteo forecast endpoint. It needs no key.
	DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultNewsURL is the NewsAPI top headlines endpoint.
	DefaultNewsURL = "https://newsapi.org/v2/top-headlines"

	defaultTimeout  = 10 * time.Second
	headlineCount   = 5
	noNewsKeyNotice = "News headlines unavailable (no API key configured)"
)

// Config holds configuration for the Service.
type Config struct {
	City      string
	Latitude  float64
	Longitude float64

	// NewsAPIKey enables live headlines. Without it NewsHeadlines returns a
	// simulated payload.
	NewsAPIKey string

	WeatherURL string
	NewsURL    string
	Timeout    time.Duration

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Conditions are the raw current readings from the weather provider, in
// Fahrenheit and mph.
type Conditions struct {
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"relative_humidity_2m"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed           float64 `json:"wind_speed_10m"`
}

type forecastResponse struct {
	Current *Conditions `json:"current"`
}

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Service fetches time, weather and news.
type Service struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewService creates a Service, filling unset endpoints and timeouts with
// defaults.
func NewService(c Config, logger *slog.Logger) *Service {
	if c.WeatherURL == "" {
		c.WeatherURL = DefaultWeatherURL
	}
	if c.NewsURL == "" {
		c.NewsURL = DefaultNewsURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}

	return &Service{
		config: c,
		httpClient: &http.Client{
			Timeout: c.Timeout,
		},
		logger: logger,
	}
}

// City returns the configured default location name.
func (s *Service) City() string {
	return s.config.City
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.config.Now()
}

// CurrentTime returns the current local date and time.
func (s *Service) CurrentTime() TimeInfo {
	return NewTimeInfo(s.config.Now())
}

// CurrentConditions fetches raw readings for a location. Zero coordinates
// fall back to the configured default location.
func (s *Service) CurrentConditions(ctx context.Context, lat, lon float64) (*Conditions, error) {
	if lat == 0 && lon == 0 {
		lat, lon = s.config.Latitude, s.config.Longitude
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")
	q.Set("timezone", "auto")

	var fr forecastResponse
	if err := s.getJSON(ctx, s.config.WeatherURL+"?"+q.Encode(), &fr); err != nil {
		return nil, fmt.Errorf("fetching weather: %w", err)
	}
	if fr.Current == nil {
		return nil, fmt.Errorf("fetching weather: %w", ErrUnavailable)
	}
	return fr.Current, nil
}

// Weather returns a formatted current-conditions report for the configured
// city. See CurrentConditions for the coordinate fallback.
func (s *Service) Weather(ctx context.Context, lat, lon float64) (*Weather, error) {
	c, err := s.CurrentConditions(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	return &Weather{
		Location:    s.config.City,
		Condition:   Condition(c.WeatherCode),
		Temperature: fmt.Sprintf("%d°F", int(math.Round(c.Temperature))),
		FeelsLike:   fmt.Sprintf("%d°F", int(math.Round(c.ApparentTemperature))),
		Humidity:    strconv.FormatFloat(c.Humidity, 'f', -1, 64) + "%",
		Wind:        fmt.Sprintf("%d mph", int(math.Round(c.WindSpeed))),
	}, nil
}

// NewsHeadlines returns up to five top US headlines for category. Without
// an API key it returns a simulated payload marked Mock.
func (s *Service) NewsHeadlines(ctx context.Context, category string) (*News, error) {
	if category == "" {
		category = "general"
	}

	if s.config.NewsAPIKey == "" {
		return &News{
			Category:  category,
			Headlines: []Headline{},
			Mock:      true,
			Message:   noNewsKeyNotice,
		}, nil
	}

	q := url.Values{}
	q.Set("apiKey", s.config.NewsAPIKey)
	q.Set("country", "us")
	q.Set("category", category)
	q.Set("pageSize", strconv.Itoa(headlineCount))

	var nr newsResponse
	if err := s.getJSON(ctx, s.config.NewsURL+"?"+q.Encode(), &nr); err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}

	headlines := make([]Headline, 0, headlineCount)
	for _, a := range nr.Articles {
		if len(headlines) == headlineCount {
			break
		}
		if a.Title == "" {
			continue
		}
		headlines = append(headlines, Headline{Title: a.Title, Source: a.Source.Name})
	}

	return &News{
		Category:  category,
		Headlines: headlines,
		Count:     len(headlines),
	}, nil
}

// BuildContext renders the real-time prompt section: the current time and,
// when available, the weather at the default location.
func (s *Service) BuildContext(ctx context.Context) string {
	parts := []string{"Current time: " + s.CurrentTime().Formatted}

	w, err := s.Weather(ctx, 0, 0)
	if err != nil {
		s.logger.Warn("weather unavailable for context", "error", err)
	} else {
		parts = append(parts, fmt.Sprintf("Weather in %s: %s, %s (feels like %s)",
			w.Location, w.Condition, w.Temperature, w.FeelsLike))
	}

	return strings.Join(parts, "\n")
}

func (s *Service) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, e.Message)
		}
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
