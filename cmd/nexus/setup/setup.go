// Package setup holds the wiring shared by the long-running nexus commands:
// config resolution, the logger and the event bus.
package setup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Yash3561/Nexus/pkg/config"
	"github.com/Yash3561/Nexus/pkg/eventstream"
	"github.com/Yash3561/Nexus/pkg/eventstream/kafka"
	"github.com/Yash3561/Nexus/pkg/eventstream/nop"
	"github.com/Yash3561/Nexus/pkg/logger"
)

const (
	// ModeKafka and ModeSimulation name the event bus in use.
	ModeKafka      = "kafka"
	ModeSimulation = "simulation"
)

// Load reads .env, builds the viper precedence chain, binds the given
// registered flags and resolves the effective config.
func Load(cmd *cobra.Command, flagKeys []string) (*config.Config, *viper.Viper, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Registry, flagKeys)

	cfg, err := config.Resolve(v)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config: %w", err)
	}
	return cfg, v, nil
}

// Logger builds the service logger. The returned LevelVar can be changed
// at runtime. When log.file is set every record is also appended to that
// file as JSON; the returned func closes it.
func Logger(cfg *config.Config, debug bool) (*slog.Logger, *slog.LevelVar, func() error, error) {
	level := &slog.LevelVar{}
	if debug || cfg.Log.Debug {
		level.Set(slog.LevelDebug)
	}
	console := logger.New(
		logger.WithLevel(level),
		logger.WithPretty(cfg.Log.Pretty),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithSource(cfg.Log.Source),
	)
	if cfg.Log.File == "" {
		return console, level, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(
		logger.WithLevel(level),
		logger.WithJSON(true),
		logger.WithSource(cfg.Log.Source),
		logger.WithWriter(f),
	)
	return logger.Multi(console, file), level, f.Close, nil
}

// WatchLogLevel follows log.debug in the config file while the process
// runs. The --debug flag pins the level at Debug.
func WatchLogLevel(v *viper.Viper, level *slog.LevelVar, pinned bool, log *slog.Logger) {
	if pinned || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next := slog.LevelInfo
		if v.GetBool("log.debug") {
			next = slog.LevelDebug
		}
		if next != level.Level() {
			level.Set(next)
			log.Info("log level changed", "file", e.Name, "level", next.String())
		}
	})
	v.WatchConfig()
}

// Duration parses a config duration, falling back to def when empty.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// KafkaConfig maps the eventbus section onto a kafka.Config.
func KafkaConfig(cfg *config.Config, clientID string) kafka.Config {
	return kafka.Config{
		Brokers:  kafka.ParseBrokers(cfg.EventBus.Brokers),
		Username: cfg.EventBus.Username,
		Password: cfg.EventBus.Password,
		GroupID:  cfg.EventBus.GroupID,
		ClientID: clientID,
	}
}

// Mode reports which event bus the config selects.
func Mode(cfg *config.Config) string {
	if len(kafka.ParseBrokers(cfg.EventBus.Brokers)) == 0 {
		return ModeSimulation
	}
	return ModeKafka
}

// Publisher returns a Kafka publisher when brokers are configured and a
// logging no-op publisher otherwise.
func Publisher(cfg *config.Config, clientID string, log *slog.Logger) (eventstream.Publisher, error) {
	if Mode(cfg) == ModeSimulation {
		return nop.NewPublisher(log), nil
	}
	return kafka.NewPublisher(KafkaConfig(cfg, clientID), log)
}

// Subscriber returns a Kafka subscriber, or nil in simulation mode.
func Subscriber(cfg *config.Config, clientID string, log *slog.Logger) (eventstream.Subscriber, error) {
	if Mode(cfg) == ModeSimulation {
		return nil, nil
	}
	return kafka.NewSubscriber(KafkaConfig(cfg, clientID), log)
}
