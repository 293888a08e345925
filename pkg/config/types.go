package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent nexus configuration stored as config.toml
// in the .nexus/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Log      LogConfig      `toml:"log"`
	API      APIConfig      `toml:"api"`
	Client   ClientConfig   `toml:"client"`
	Storage  StorageConfig  `toml:"storage"`
	Memory   MemoryConfig   `toml:"memory"`
	LLM      LLMConfig      `toml:"llm"`
	Search   SearchConfig   `toml:"search"`
	Realtime RealtimeConfig `toml:"realtime"`
	TTS      TTSConfig      `toml:"tts"`
	EventBus EventBusConfig `toml:"eventbus"`
}

// LogConfig controls the service logger.
type LogConfig struct {
	Debug  bool   `toml:"debug,omitempty"`
	JSON   bool   `toml:"json,omitempty"`
	Pretty bool   `toml:"pretty,omitempty"`
	Source bool   `toml:"source,omitempty"`
	File   string `toml:"file,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen      string `toml:"listen,omitempty"`
	CORSOrigins string `toml:"cors_origins,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running server
// (nexus chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// StorageConfig selects where profile and session records live.
type StorageConfig struct {
	// Provider is one of "file", "memory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	Root        string `toml:"root,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// MemoryConfig holds conversation window and registry bounds.
type MemoryConfig struct {
	Window       uint   `toml:"window,omitempty"`
	PromptWindow uint   `toml:"prompt_window,omitempty"`
	RegistrySize uint   `toml:"registry_size,omitempty"`
	RegistryTTL  string `toml:"registry_ttl,omitempty"`
}

// LLMConfig selects the generation backend.
type LLMConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	Timeout  string `toml:"timeout,omitempty"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	APIKey     string `toml:"api_key,omitempty"`
	MaxResults uint   `toml:"max_results,omitempty"`
	Timeout    string `toml:"timeout,omitempty"`
}

// RealtimeConfig holds weather and news feed settings.
type RealtimeConfig struct {
	City       string  `toml:"city,omitempty"`
	Latitude   float64 `toml:"latitude,omitempty"`
	Longitude  float64 `toml:"longitude,omitempty"`
	NewsAPIKey string  `toml:"news_api_key,omitempty"`
	Timeout    string  `toml:"timeout,omitempty"`
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	VoiceID string `toml:"voice_id,omitempty"`
	ModelID string `toml:"model_id,omitempty"`
	Timeout string `toml:"timeout,omitempty"`
}

// EventBusConfig holds broker settings. Empty Brokers selects simulation mode.
type EventBusConfig struct {
	Brokers          string `toml:"brokers,omitempty"`
	Username         string `toml:"username,omitempty"`
	Password         string `toml:"password,omitempty"`
	GroupID          string `toml:"group_id,omitempty"`
	ProducerInterval string `toml:"producer_interval,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if v != "" {
				if _, err := time.ParseDuration(v); err != nil {
					return fmt.Errorf("invalid value for %s: %w", name, err)
				}
			}
			*field(c) = v
			return nil
		},
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = 0
				return nil
			}
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = 0
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			if v == "" {
				*field(c) = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// orderedKeys matches the TOML section layout and drives ValidConfigKeys.
var orderedKeys = []string{
	"log.debug",
	"log.json",
	"log.pretty",
	"log.source",
	"log.file",
	"api.listen",
	"api.cors_origins",
	"client.api_target",
	"storage.provider",
	"storage.root",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"memory.window",
	"memory.prompt_window",
	"memory.registry_size",
	"memory.registry_ttl",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"llm.timeout",
	"search.api_key",
	"search.max_results",
	"search.timeout",
	"realtime.city",
	"realtime.latitude",
	"realtime.longitude",
	"realtime.news_api_key",
	"realtime.timeout",
	"tts.api_key",
	"tts.voice_id",
	"tts.model_id",
	"tts.timeout",
	"eventbus.brokers",
	"eventbus.username",
	"eventbus.password",
	"eventbus.group_id",
	"eventbus.producer_interval",
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"log.debug":  boolKey("log.debug", func(c *Config) *bool { return &c.Log.Debug }),
	"log.json":   boolKey("log.json", func(c *Config) *bool { return &c.Log.JSON }),
	"log.pretty": boolKey("log.pretty", func(c *Config) *bool { return &c.Log.Pretty }),
	"log.source": boolKey("log.source", func(c *Config) *bool { return &c.Log.Source }),
	"log.file":   stringKey(func(c *Config) *string { return &c.Log.File }),

	"api.listen":       stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.cors_origins": stringKey(func(c *Config) *string { return &c.API.CORSOrigins }),

	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.root":         stringKey(func(c *Config) *string { return &c.Storage.Root }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"memory.window":        uintKey("memory.window", func(c *Config) *uint { return &c.Memory.Window }),
	"memory.prompt_window": uintKey("memory.prompt_window", func(c *Config) *uint { return &c.Memory.PromptWindow }),
	"memory.registry_size": uintKey("memory.registry_size", func(c *Config) *uint { return &c.Memory.RegistrySize }),
	"memory.registry_ttl":  durationKey("memory.registry_ttl", func(c *Config) *string { return &c.Memory.RegistryTTL }),

	"llm.provider": stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":    stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.api_key":  stringKey(func(c *Config) *string { return &c.LLM.APIKey }),
	"llm.base_url": stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"llm.timeout":  durationKey("llm.timeout", func(c *Config) *string { return &c.LLM.Timeout }),

	"search.api_key":     stringKey(func(c *Config) *string { return &c.Search.APIKey }),
	"search.max_results": uintKey("search.max_results", func(c *Config) *uint { return &c.Search.MaxResults }),
	"search.timeout":     durationKey("search.timeout", func(c *Config) *string { return &c.Search.Timeout }),

	"realtime.city":         stringKey(func(c *Config) *string { return &c.Realtime.City }),
	"realtime.latitude":     floatKey("realtime.latitude", func(c *Config) *float64 { return &c.Realtime.Latitude }),
	"realtime.longitude":    floatKey("realtime.longitude", func(c *Config) *float64 { return &c.Realtime.Longitude }),
	"realtime.news_api_key": stringKey(func(c *Config) *string { return &c.Realtime.NewsAPIKey }),
	"realtime.timeout":      durationKey("realtime.timeout", func(c *Config) *string { return &c.Realtime.Timeout }),

	"tts.api_key":  stringKey(func(c *Config) *string { return &c.TTS.APIKey }),
	"tts.voice_id": stringKey(func(c *Config) *string { return &c.TTS.VoiceID }),
	"tts.model_id": stringKey(func(c *Config) *string { return &c.TTS.ModelID }),
	"tts.timeout":  durationKey("tts.timeout", func(c *Config) *string { return &c.TTS.Timeout }),

	"eventbus.brokers":           stringKey(func(c *Config) *string { return &c.EventBus.Brokers }),
	"eventbus.username":          stringKey(func(c *Config) *string { return &c.EventBus.Username }),
	"eventbus.password":          stringKey(func(c *Config) *string { return &c.EventBus.Password }),
	"eventbus.group_id":          stringKey(func(c *Config) *string { return &c.EventBus.GroupID }),
	"eventbus.producer_interval": durationKey("eventbus.producer_interval", func(c *Config) *string { return &c.EventBus.ProducerInterval }),
}
