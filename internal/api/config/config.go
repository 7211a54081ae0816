package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds dashboard gateway configuration
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	App     AppConfig     `json:"app" yaml:"app"`
	Backend BackendConfig `json:"backend" yaml:"backend"`
	Redis   RedisConfig   `json:"redis" yaml:"redis"`
	Logger  logger.Config `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type AppConfig struct {
	NodeID           int64    `json:"node_id" yaml:"node_id"`
	MaxUploadBytes   int64    `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	PixelSizeUm      float64  `json:"pixel_size_um" yaml:"pixel_size_um"`
	Modalities       []string `json:"modalities" yaml:"modalities"`
	WorkspaceTTLSec  int      `json:"workspace_ttl_sec" yaml:"workspace_ttl_sec"`
	SweepIntervalSec int      `json:"sweep_interval_sec" yaml:"sweep_interval_sec"`
	OverviewWorkers  int      `json:"overview_workers" yaml:"overview_workers"`
}

type BackendConfig struct {
	BaseURL          string `json:"base_url" yaml:"base_url"`
	TimeoutMS        int    `json:"timeout_ms" yaml:"timeout_ms"`
	FailureThreshold int    `json:"failure_threshold" yaml:"failure_threshold"`
	OpenTimeoutMS    int    `json:"open_timeout_ms" yaml:"open_timeout_ms"`
}

type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8090",
		},
		App: AppConfig{
			NodeID:           1,
			MaxUploadBytes:   512 * 1024 * 1024, // 512MB
			PixelSizeUm:      0.5,
			Modalities:       []string{"rabies", "double_injection"},
			WorkspaceTTLSec:  7200,
			SweepIntervalSec: 60,
			OverviewWorkers:  3,
		},
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8000",
			TimeoutMS:        60000,
			FailureThreshold: 5,
			OpenTimeoutMS:    10000,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			TimeoutMS: 200,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

func (c AppConfig) WorkspaceTTL() time.Duration {
	return time.Duration(c.WorkspaceTTLSec) * time.Second
}

func (c AppConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c BackendConfig) OpenTimeout() time.Duration {
	return time.Duration(c.OpenTimeoutMS) * time.Millisecond
}

func (c RedisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "api", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// The logger is not initialised yet. An implicit path falls back to
		// defaults; an explicit one must parse.
		log.Printf("Config file not loaded, path: %s, error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
