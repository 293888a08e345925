package config

const (
	defaultAPIListen   = ":8000"
	defaultCORSOrigins = "http://localhost:3000"
	defaultAPITarget   = "http://localhost:8000"

	defaultStorageProvider = "file"

	defaultWindow       = 20
	defaultPromptWindow = 10
	defaultRegistrySize = 1024
	defaultRegistryTTL  = "24h"

	defaultLLMProvider = "gemini"
	defaultLLMModel    = "gemini-2.5-flash"
	defaultLLMTimeout  = "60s"

	defaultSearchMaxResults = 5
	defaultSearchTimeout    = "15s"

	defaultCity      = "New York"
	defaultLatitude  = 40.7128
	defaultLongitude = -74.0060
	defaultRTTimeout = "10s"

	defaultVoiceID    = "pNInz6obpgDQGcFmaJgB"
	defaultTTSModelID = "eleven_turbo_v2_5"
	defaultTTSTimeout = "30s"

	defaultGroupID          = "nexus-gaia-consumer"
	defaultProducerInterval = "60s"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen:      defaultAPIListen,
			CORSOrigins: defaultCORSOrigins,
		},
		Client: ClientConfig{
			APITarget: defaultAPITarget,
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Memory: MemoryConfig{
			Window:       defaultWindow,
			PromptWindow: defaultPromptWindow,
			RegistrySize: defaultRegistrySize,
			RegistryTTL:  defaultRegistryTTL,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
			Timeout:  defaultLLMTimeout,
		},
		Search: SearchConfig{
			MaxResults: defaultSearchMaxResults,
			Timeout:    defaultSearchTimeout,
		},
		Realtime: RealtimeConfig{
			City:      defaultCity,
			Latitude:  defaultLatitude,
			Longitude: defaultLongitude,
			Timeout:   defaultRTTimeout,
		},
		TTS: TTSConfig{
			VoiceID: defaultVoiceID,
			ModelID: defaultTTSModelID,
			Timeout: defaultTTSTimeout,
		},
		EventBus: EventBusConfig{
			GroupID:          defaultGroupID,
			ProducerInterval: defaultProducerInterval,
		},
	}
}
