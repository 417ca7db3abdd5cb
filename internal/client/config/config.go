package config

import "time"

// assistantAPIKey can be set at build time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/rentable/internal/client/config.assistantAPIKey=..."
var assistantAPIKey string

// Config holds runtime settings for the rentable client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabasePath: sqlite file holding the persisted session.
//   - StoragePublicURL: base URL public avatar links are built from.
//   - AssistantBaseURL, AssistantModel, AssistantAPIKey: chat assistant.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr  string        `envconfig:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `envconfig:"DATABASE_PATH"`
	StoragePublicURL    string        `envconfig:"STORAGE_PUBLIC_URL"`
	AssistantBaseURL    string        `envconfig:"ASSISTANT_BASE_URL"`
	AssistantModel      string        `envconfig:"ASSISTANT_MODEL"`
	AssistantAPIKey     string        `envconfig:"ASSISTANT_API_KEY"`
	LogLevel            string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "rentable.db"
	c.StoragePublicURL = "http://127.0.0.1:9000"
	c.AssistantBaseURL = "https://generativelanguage.googleapis.com"
	c.AssistantModel = "gemini-2.5-flash"
	c.AssistantAPIKey = assistantAPIKey
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
