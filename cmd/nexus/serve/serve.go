// Package servecmder provides the serve command, which runs the nexus API
// server and the real-time feed consumer.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Yash3561/Nexus/api"
	"github.com/Yash3561/Nexus/cmd/nexus/setup"
	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/config"
	"github.com/Yash3561/Nexus/pkg/dotdir"
	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/llm/provider"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/realtime"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/search/tavily"
	"github.com/Yash3561/Nexus/pkg/storage"
	storageutils "github.com/Yash3561/Nexus/pkg/storage/utils"
	"github.com/Yash3561/Nexus/pkg/tts"
	"github.com/Yash3561/Nexus/pkg/tts/elevenlabs"
	"github.com/Yash3561/Nexus/pkg/worker"
)

const clientID = "nexus-api"

type ServeCommander struct {
	listen          string
	storageProvider string
	storageRoot     string
	sqlitePath      string
	postgresDSN     string
	llmProvider     string
	model           string
	brokers         string
	registrySize    uint

	debug     bool
	configDir string

	cfg    *config.Config
	viper  *viper.Viper
	level  *slog.LevelVar
	logger *slog.Logger
}

const serveLongDesc string = `Run the nexus API server.

The server answers /api/process and /api/stream, serves the memory and
real-time views, and consumes the real-time feed. With eventbus.brokers
set the feed comes from Kafka; otherwise a local simulation feeds it.

Examples:
  nexus serve
  nexus serve --listen :9000 --storage sqlite --sqlite ./nexus.db
  nexus serve --llm-provider openai --model gpt-4o-mini`

const serveShortDesc string = "Run the nexus API server"

var serveFlags = []string{
	config.FlagListen,
	config.FlagStorageProvider,
	config.FlagStorageRoot,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagLLMProvider,
	config.FlagModel,
	config.FlagBrokers,
	config.FlagRegistrySize,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, cmder.viper, err = setup.Load(cmd, serveFlags)
			if err != nil {
				return err
			}
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageRoot, &cmder.storageRoot)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Registry, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Registry, config.FlagBrokers, &cmder.brokers)
	config.AddUintFlag(cmd, config.Registry, config.FlagRegistrySize, &cmder.registrySize)

	return cmd
}

func (c *ServeCommander) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, level, closeLog, err := setup.Logger(c.cfg, c.debug)
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger, c.level = log, level
	setup.WatchLogLevel(c.viper, c.level, c.debug, c.logger)

	store, err := c.newStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := c.newRegistry(store)
	if err != nil {
		return err
	}

	generator, err := c.newGenerator(ctx)
	if err != nil {
		return err
	}

	svc, err := c.newRealtime()
	if err != nil {
		return err
	}

	searcher, err := c.newSearcher()
	if err != nil {
		return err
	}

	publisher, err := setup.Publisher(c.cfg, clientID, c.logger)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	subscriber, err := setup.Subscriber(c.cfg, clientID, c.logger)
	if err != nil {
		return fmt.Errorf("creating event subscriber: %w", err)
	}
	feed := realtime.NewCache()
	consumer := realtime.NewConsumer(feed, subscriber, 0, c.logger)
	if subscriber != nil {
		defer subscriber.Close()
	}

	genTimeout, err := setup.Duration(c.cfg.LLM.Timeout, 0)
	if err != nil {
		return err
	}

	assembler := assistant.NewContextAssembler(assistant.AssemblerConfig{
		Registry:      registry,
		Search:        searcher,
		Realtime:      svc,
		SearchResults: int(c.cfg.Search.MaxResults),
		HistoryWindow: int(c.cfg.Memory.PromptWindow),
		Logger:        c.logger,
	})
	orch := assistant.NewOrchestrator(assistant.Config{
		Registry:        registry,
		Assembler:       assembler,
		Generator:       generator,
		Extractor:       memory.NewHeuristicExtractor(c.logger),
		Events:          pool,
		GenerateTimeout: genTimeout,
		Logger:          c.logger,
	})

	server, err := api.NewServer(api.Config{
		ListenAddr:   c.cfg.API.Listen,
		CORSOrigins:  c.cfg.API.CORSOrigins,
		Orchestrator: orch,
		Search:       searcher,
		Realtime:     svc,
		Feed:         feed,
		Speech:       c.newSynthesizer(),
		EventBus:     setup.Mode(c.cfg),
		Storage:      c.cfg.Storage.Provider,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)

	go runFeed(ctx, consumer, c.logger)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	c.logger.Info("nexus ready",
		"listen", c.cfg.API.Listen,
		"generator", generator.Name(),
		"storage", c.cfg.Storage.Provider,
		"eventbus", setup.Mode(c.cfg),
	)

	select {
	case err := <-errChan:
		_ = server.Shutdown()
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}

type feedRunner interface {
	Run(ctx context.Context) error
}

// runFeed runs the real-time feed until ctx ends. A failed feed leaves the
// API up with whatever readings are cached.
func runFeed(ctx context.Context, feed feedRunner, log *slog.Logger) {
	if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("feed consumer stopped, serving cached readings", "error", err)
	}
}

func (c *ServeCommander) newStorage(ctx context.Context) (storage.Driver, error) {
	root := c.cfg.Storage.Root
	if root == "" && (c.cfg.Storage.Provider == "" || c.cfg.Storage.Provider == "file") {
		dir, err := dotdir.NewManager().Subdir(c.configDir, "memory")
		if err != nil {
			return nil, fmt.Errorf("resolving storage root: %w", err)
		}
		root = dir
	}

	store, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		ProviderType: c.cfg.Storage.Provider,
		Root:         root,
		SQLitePath:   c.cfg.Storage.SQLitePath,
		PostgresDSN:  c.cfg.Storage.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}
	return store, nil
}

func (c *ServeCommander) newRegistry(store storage.Driver) (*memory.Registry, error) {
	ttl, err := setup.Duration(c.cfg.Memory.RegistryTTL, 0)
	if err != nil {
		return nil, err
	}
	window := int(c.cfg.Memory.Window)
	if window == 0 {
		window = memory.DefaultWindow
	}

	return memory.NewRegistry(
		memory.NewProfileStore(store, c.logger),
		memory.NewConversationLog(store, c.logger, window),
		memory.RegistryConfig{Size: int(c.cfg.Memory.RegistrySize), TTL: ttl},
		c.logger,
	), nil
}

// newGenerator falls back to llm.Unavailable when the backend has no
// credentials, so the server still starts and answers with the fallback.
func (c *ServeCommander) newGenerator(ctx context.Context) (llm.Generator, error) {
	timeout, err := setup.Duration(c.cfg.LLM.Timeout, 0)
	if err != nil {
		return nil, err
	}

	gen, err := provider.New(ctx, provider.Config{
		Provider: c.cfg.LLM.Provider,
		Model:    c.cfg.LLM.Model,
		APIKey:   c.cfg.LLM.APIKey,
		BaseURL:  c.cfg.LLM.BaseURL,
		Timeout:  timeout,
		Logger:   c.logger,
	})
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		c.logger.Warn("generator not configured, replies will use the fallback", "provider", c.cfg.LLM.Provider)
		return llm.Unavailable{}, nil
	case err != nil:
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	return gen, nil
}

func (c *ServeCommander) newRealtime() (*realtime.Service, error) {
	timeout, err := setup.Duration(c.cfg.Realtime.Timeout, 0)
	if err != nil {
		return nil, err
	}
	return realtime.NewService(realtime.Config{
		City:       c.cfg.Realtime.City,
		Latitude:   c.cfg.Realtime.Latitude,
		Longitude:  c.cfg.Realtime.Longitude,
		NewsAPIKey: c.cfg.Realtime.NewsAPIKey,
		Timeout:    timeout,
	}, c.logger), nil
}

// newSearcher returns nil when no search key is configured.
func (c *ServeCommander) newSearcher() (search.Searcher, error) {
	timeout, err := setup.Duration(c.cfg.Search.Timeout, 0)
	if err != nil {
		return nil, err
	}
	client := tavily.NewClient(tavily.Config{
		APIKey:  c.cfg.Search.APIKey,
		Timeout: timeout,
	}, c.logger)
	if !client.Configured() {
		c.logger.Info("web search disabled: no search.api_key")
		return nil, nil
	}
	return client, nil
}

// newSynthesizer returns nil when no speech key is configured.
func (c *ServeCommander) newSynthesizer() tts.Synthesizer {
	timeout, err := setup.Duration(c.cfg.TTS.Timeout, 30*time.Second)
	if err != nil {
		c.logger.Warn("invalid tts.timeout, using default", "error", err)
		timeout = 30 * time.Second
	}
	client := elevenlabs.NewClient(elevenlabs.Config{
		APIKey:  c.cfg.TTS.APIKey,
		VoiceID: c.cfg.TTS.VoiceID,
		ModelID: c.cfg.TTS.ModelID,
		Timeout: timeout,
	}, c.logger)
	if !client.Configured() {
		return nil
	}
	return client
}
