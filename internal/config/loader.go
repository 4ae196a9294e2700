package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon. Zero values mean
// "unspecified" and are replaced by flag or built-in defaults in main.
type Config struct {
	Model        string   `json:"model" yaml:"model" toml:"model"`
	Port         int      `json:"port" yaml:"port" toml:"port"`
	ModelsDir    string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Engine       string   `json:"engine" yaml:"engine" toml:"engine"`
	EngineBinary string   `json:"engine_binary" yaml:"engine_binary" toml:"engine_binary"`
	Language     string   `json:"language" yaml:"language" toml:"language"`
	Threads      int      `json:"threads" yaml:"threads" toml:"threads"`
	AutoDownload bool     `json:"auto_download" yaml:"auto_download" toml:"auto_download"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	Metrics      bool     `json:"metrics" yaml:"metrics" toml:"metrics"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
