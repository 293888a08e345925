package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Yash3561/Nexus/pkg/dotdir"
)

// legacyEnv maps config keys to the vendor variable names commonly kept in a
// .env file. They are consulted after the NEXUS_ prefixed form.
var legacyEnv = map[string][]string{
	"llm.api_key":           {"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
	"search.api_key":        {"TAVILY_API_KEY"},
	"realtime.news_api_key": {"NEWS_API_KEY"},
	"tts.api_key":           {"ELEVENLABS_API_KEY"},
	"eventbus.brokers":      {"CONFLUENT_BOOTSTRAP_SERVERS"},
	"eventbus.username":     {"CONFLUENT_API_KEY"},
	"eventbus.password":     {"CONFLUENT_API_SECRET"},
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the NEXUS_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (NEXUS_API_LISTEN, NEXUS_LLM_API_KEY, GOOGLE_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		envs := append([]string{"NEXUS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// Resolve materializes the effective Config from viper's precedence chain.
func Resolve(v *viper.Viper) (*Config, error) {
	cfg := &Config{Version: v.GetInt("version")}
	for _, key := range orderedKeys {
		info := configKeys[key]
		if err := info.set(cfg, v.GetString(key)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for key, info := range configKeys {
		v.SetDefault(key, info.get(d))
	}
}
