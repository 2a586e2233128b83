package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration. Values come from code defaults, then
// an optional YAML file named by ARCHIVE_CONFIG_PATH, then environment
// variables, later sources winning.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Uploads UploadsConfig `yaml:"uploads"`
	Workers WorkersConfig `yaml:"workers"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type UploadsConfig struct {
	// Dir is where uploaded originals and processed derivatives land.
	Dir string `yaml:"dir"`
	// MaxSizeMB caps a single uploaded file.
	MaxSizeMB int `yaml:"max_size_mb"`
}

type WorkersConfig struct {
	// AnalysisWorkers sizes the image analysis pool.
	AnalysisWorkers int `yaml:"analysis_workers"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Uploads: UploadsConfig{
			Dir:       "./uploads",
			MaxSizeMB: 25,
		},
		Workers: WorkersConfig{
			AnalysisWorkers: 4,
		},
	}

	if path := os.Getenv("ARCHIVE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ARCHIVE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		cfg.Uploads.Dir = dir
	}
	if sizeStr := os.Getenv("UPLOAD_MAX_SIZE_MB"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid UPLOAD_MAX_SIZE_MB: %w", err)
		}
		cfg.Uploads.MaxSizeMB = size
	}
	if workersStr := os.Getenv("ANALYSIS_WORKERS"); workersStr != "" {
		workers, err := strconv.Atoi(workersStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ANALYSIS_WORKERS: %w", err)
		}
		cfg.Workers.AnalysisWorkers = workers
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
