package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/rentable/internal/flagx"
	"github.com/dmitrijs2005/rentable/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file decoding. Empty values leave
// the corresponding Config field unchanged.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	StoragePublicURL    string         `json:"storage_public_url" yaml:"storage_public_url"`
	AssistantBaseURL    string         `json:"assistant_base_url" yaml:"assistant_base_url"`
	AssistantModel      string         `json:"assistant_model" yaml:"assistant_model"`
	AssistantAPIKey     string         `json:"assistant_api_key" yaml:"assistant_api_key"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with values from the file named by -c or -config.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.StoragePublicURL, fc.StoragePublicURL)
	setString(&cfg.AssistantBaseURL, fc.AssistantBaseURL)
	setString(&cfg.AssistantModel, fc.AssistantModel)
	setString(&cfg.AssistantAPIKey, fc.AssistantAPIKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
