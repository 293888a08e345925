// Package producercmder provides the producer command, which publishes
// real-time weather, headlines and alerts to the event bus.
package producercmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Yash3561/Nexus/cmd/nexus/setup"
	"github.com/Yash3561/Nexus/pkg/config"
	"github.com/Yash3561/Nexus/pkg/realtime"
)

const clientID = "nexus-gaia-producer"

type ProducerCommander struct {
	brokers string
	once    bool
	debug   bool

	cfg    *config.Config
	logger *slog.Logger
}

const producerLongDesc string = `Publish real-time data to the event bus.

Every eventbus.producer_interval the producer fetches current weather and
top headlines and publishes them to the gaia-updates topic. Each cycle
also has a one in five chance of publishing a simulated alert to
gaia-alerts. Without eventbus.brokers events are only logged.

Examples:
  nexus producer
  nexus producer --once --debug`

const producerShortDesc string = "Publish real-time data to the event bus"

func NewProducerCmd() *cobra.Command {
	cmder := &ProducerCommander{}

	cmd := &cobra.Command{
		Use:   "producer",
		Short: producerShortDesc,
		Long:  producerLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, _, err = setup.Load(cmd, []string{config.FlagBrokers})
			if err != nil {
				return err
			}
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagBrokers, &cmder.brokers)
	cmd.Flags().BoolVar(&cmder.once, "once", false, "Run a single cycle and exit")

	return cmd
}

func (c *ProducerCommander) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, _, closeLog, err := setup.Logger(c.cfg, c.debug)
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	interval, err := setup.Duration(c.cfg.EventBus.ProducerInterval, realtime.DefaultProducerInterval)
	if err != nil {
		return err
	}
	timeout, err := setup.Duration(c.cfg.Realtime.Timeout, 0)
	if err != nil {
		return err
	}

	publisher, err := setup.Publisher(c.cfg, clientID, c.logger)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	svc := realtime.NewService(realtime.Config{
		City:       c.cfg.Realtime.City,
		Latitude:   c.cfg.Realtime.Latitude,
		Longitude:  c.cfg.Realtime.Longitude,
		NewsAPIKey: c.cfg.Realtime.NewsAPIKey,
		Timeout:    timeout,
	}, c.logger)

	producer := realtime.NewProducer(svc, publisher, realtime.ProducerConfig{
		Interval:    interval,
		AlertChance: realtime.DefaultAlertChance,
	}, c.logger)

	c.logger.Info("producer starting",
		"eventbus", setup.Mode(c.cfg),
		"interval", interval,
	)

	if c.once {
		n, err := producer.Cycle(ctx)
		c.logger.Info("cycle complete", "published", n)
		return err
	}
	return producer.Run(ctx)
}
