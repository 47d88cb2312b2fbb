package platform

import (
	"fmt"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the file/environment configuration of the harumemo binary.
// Environment variables override values read from the file.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// StorageConfig selects and locates the blob store. NoSandbox lets `go run`
// builds use the configured location directly.
type StorageConfig struct {
	Adapter   string `yaml:"adapter" env:"HARUMEMO_ADAPTER" env-default:"fs"`
	URI       string `yaml:"uri" env:"HARUMEMO_URI"`
	Key       string `yaml:"key" env:"HARUMEMO_STORAGE_KEY" env-default:"harumemo_data"`
	NoSandbox bool   `yaml:"no_sandbox" env:"HARUMEMO_NO_SANDBOX"`
}

type RedisConfig struct {
	Password string `yaml:"password" env:"HARUMEMO_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"HARUMEMO_REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"HARUMEMO_REDIS_PREFIX" env-default:"harumemo:"`
}

type HTTPConfig struct {
	Addr      string `yaml:"addr" env:"HARUMEMO_HTTP_ADDR" env-default:":8080"`
	AccessLog bool   `yaml:"access_log" env:"HARUMEMO_HTTP_ACCESS_LOG" env-default:"false"`
}

// LoadConfig reads the configuration. With an empty path only the environment
// (and defaults) are used; otherwise the file is read first.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// Options translates the configuration into factory options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Storage.Adapter),
		WithStorageKey(c.Storage.Key),
		WithDevSafety(!c.Storage.NoSandbox),
	}
	if c.Storage.Adapter == AdapterRedis {
		opts = append(opts,
			WithRedisAuth(c.Redis.Password, c.Redis.DB),
			WithRedisPrefix(c.Redis.Prefix),
		)
	}
	return opts
}
