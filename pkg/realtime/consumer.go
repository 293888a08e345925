package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

// DefaultSimulationInterval is the time between synthetic readings when no
// event bus is configured.
const DefaultSimulationInterval = 30 * time.Second

// simulatedReading is inserted into the cache in simulation mode.
var simulatedReading = WeatherReading{Temperature: 34, WeatherCode: 3}

// Consumer feeds the Cache from the event bus.
type Consumer struct {
	cache      *Cache
	subscriber eventstream.Subscriber
	interval   time.Duration
	logger     *slog.Logger
}

// NewConsumer creates a Consumer. A nil subscriber selects simulation mode,
// which inserts a synthetic weather reading every interval.
func NewConsumer(cache *Cache, subscriber eventstream.Subscriber, interval time.Duration, logger *slog.Logger) *Consumer {
	if interval <= 0 {
		interval = DefaultSimulationInterval
	}
	return &Consumer{
		cache:      cache,
		subscriber: subscriber,
		interval:   interval,
		logger:     logger,
	}
}

// Simulated reports whether the consumer runs without an event bus.
func (c *Consumer) Simulated() bool {
	return c.subscriber == nil
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscriber == nil {
		c.logger.Info("no event bus configured, running feed simulation", "interval", c.interval)
		return c.simulate(ctx)
	}

	return c.subscriber.Subscribe(ctx, []string{eventstream.TopicUpdates, eventstream.TopicAlerts},
		func(ctx context.Context, topic string, ev *eventstream.Envelope) error {
			c.logger.Debug("feed event received", "topic", topic, "event_type", ev.EventType)
			return c.cache.Apply(ctx, topic, ev)
		})
}

func (c *Consumer) simulate(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		r := simulatedReading
		r.Condition = Condition(r.WeatherCode)
		r.Timestamp = time.Now().UTC()
		c.cache.PutWeather(r)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
