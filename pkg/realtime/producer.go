package realtime

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

const (
	// DefaultProducerInterval is the time between producer cycles.
	DefaultProducerInterval = 60 * time.Second

	// DefaultAlertChance is the probability of a simulated alert per cycle.
	DefaultAlertChance = 0.2

	producerSource = "gaia-producer"
)

var simulatedAlerts = []Alert{
	{AlertType: "seismic", Message: "Minor seismic activity detected in Pacific Ring", Severity: "low"},
	{AlertType: "weather", Message: "Storm system approaching Eastern seaboard", Severity: "medium"},
	{AlertType: "market", Message: "Crypto market volatility spike detected", Severity: "low"},
	{AlertType: "global", Message: "Unusual network activity in HIVEMIND", Severity: "info"},
}

// ProducerConfig configures a Producer.
type ProducerConfig struct {
	Interval time.Duration

	// AlertChance is the per-cycle alert probability. Zero disables alerts.
	AlertChance float64

	// Rand drives alert selection. Defaults to a randomly seeded source.
	Rand *rand.Rand
}

// Producer periodically publishes weather, headlines and the occasional
// simulated alert to the event bus.
type Producer struct {
	service   *Service
	publisher eventstream.Publisher
	config    ProducerConfig
	logger    *slog.Logger
}

// NewProducer creates a Producer.
func NewProducer(service *Service, publisher eventstream.Publisher, c ProducerConfig, logger *slog.Logger) *Producer {
	if c.Interval <= 0 {
		c.Interval = DefaultProducerInterval
	}
	if c.AlertChance < 0 {
		c.AlertChance = 0
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Producer{
		service:   service,
		publisher: publisher,
		config:    c,
		logger:    logger,
	}
}

// Run runs a cycle immediately and then every interval until ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	p.logger.Info("producer started",
		"interval", p.config.Interval,
		"topics", []string{eventstream.TopicUpdates, eventstream.TopicAlerts},
	)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		sent, err := p.Cycle(ctx)
		if err != nil {
			p.logger.Warn("producer cycle incomplete", "sent", sent, "error", err)
		} else {
			p.logger.Info("producer cycle complete", "sent", sent)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("producer stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle publishes one round of feed events and returns how many were sent.
// A failed source or publish does not stop the rest of the cycle; the
// errors are joined.
func (p *Producer) Cycle(ctx context.Context) (int, error) {
	var (
		sent int
		errs []error
	)

	publish := func(topic, eventType string, payload any) {
		ev, err := eventstream.NewEnvelope(eventType, producerSource, payload)
		if err == nil {
			err = p.publisher.Publish(ctx, topic, ev)
		}
		if err != nil {
			errs = append(errs, err)
			return
		}
		sent++
	}

	now := p.service.Now().UTC()

	if c, err := p.service.CurrentConditions(ctx, 0, 0); err != nil {
		errs = append(errs, err)
	} else {
		publish(eventstream.TopicUpdates, eventstream.EventTypeWeather, WeatherReading{
			Type:        "weather",
			Temperature: c.Temperature,
			WindSpeed:   c.WindSpeed,
			WeatherCode: c.WeatherCode,
			Condition:   Condition(c.WeatherCode),
			Location:    &Coordinates{Lat: p.service.config.Latitude, Lon: p.service.config.Longitude},
			Timestamp:   now,
		})
	}

	if news, err := p.service.NewsHeadlines(ctx, "general"); err != nil {
		errs = append(errs, err)
	} else if !news.Mock {
		for _, h := range news.Headlines {
			publish(eventstream.TopicUpdates, eventstream.EventTypeNews, NewsItem{
				Type:      "news",
				Title:     h.Title,
				Source:    h.Source,
				Timestamp: now,
			})
		}
	}

	if p.config.Rand.Float64() < p.config.AlertChance {
		a := simulatedAlerts[p.config.Rand.IntN(len(simulatedAlerts))]
		a.Type = "alert"
		a.Timestamp = now
		publish(eventstream.TopicAlerts, eventstream.EventTypeAlert, a)
	}

	return sent, errors.Join(errs...)
}
