package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the service config file.
const ConfigPath = "config.yaml"

// FileConfig represents service-level configuration loaded from YAML.
// Runtime tunables (cadence, caps, rotation) live in the empire settings
// document instead; see Settings.
type FileConfig struct {
	Port            string `yaml:"port"`
	LogLevel        string `yaml:"logLevel"`
	DataDir         string `yaml:"dataDir"`
	DatabasePath    string `yaml:"databasePath"`
	SettingsPath    string `yaml:"settingsPath"`
	EventLogPath    string `yaml:"eventLogPath"`
	ChannelSeedPath string `yaml:"channelSeedPath"`
	BackupDir       string `yaml:"backupDir"`

	SunoAPIKey   string `yaml:"sunoApiKey"`
	SunoBaseURL  string `yaml:"sunoBaseURL"`
	GeminiAPIKey string `yaml:"geminiApiKey"`
	UploaderURL  string `yaml:"uploaderURL"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	TickSeconds int `yaml:"tickSeconds"`
	Workers     int `yaml:"workers"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("EMPIRE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("EMPIRE_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SUNO_API_KEY"); v != "" {
		cfg.SunoAPIKey = v
	}
	if v := os.Getenv("SUNO_BASE_URL"); v != "" {
		cfg.SunoBaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("EMPIRE_UPLOADER_URL"); v != "" {
		cfg.UploaderURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("EMPIRE_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TickSeconds = n
		}
	}
	if v := os.Getenv("EMPIRE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "autonomous_empire.db"
	}
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = "empire_config.json"
	}
	if cfg.EventLogPath == "" {
		cfg.EventLogPath = "autonomous_empire.log"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if cfg.TickSeconds == 0 {
		cfg.TickSeconds = 60
	}
	if cfg.Workers == 0 {
		cfg.Workers = 10
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.TickSeconds < 0 {
		return errors.New("config: tickSeconds must be >= 0")
	}
	if cfg.Workers < 0 {
		return errors.New("config: workers must be >= 0")
	}
	if cfg.MinioEndpoint != "" && cfg.MinioBucket == "" {
		return errors.New("config: minioBucket is required when minioEndpoint is set")
	}
	return nil
}
