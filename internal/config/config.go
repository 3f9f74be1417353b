// Package config loads application settings from the environment and
// an optional .env file, with sensible defaults for local use.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig  `mapstructure:"server"`
	CORS        CORSConfig    `mapstructure:"cors"`
	DatabaseURL string        `mapstructure:"database_url"`
	RecipesDir  string        `mapstructure:"recipes_dir"`
	SyncTimeout time.Duration `mapstructure:"sync_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CORSConfig holds cross-origin settings for the browser frontend.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from the environment (APP_ prefix) and an
// optional .env file in the working directory.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("recipes_dir", "RECIPES_DIR")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("log_level", "LOG_LEVEL")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("recipes_dir", "reseptit")
	v.SetDefault("sync_timeout", "30s")
	v.SetDefault("log_level", "info")
}

func validate(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if config.RecipesDir == "" {
		return fmt.Errorf("recipes dir is required")
	}
	if config.SyncTimeout <= 0 {
		return fmt.Errorf("sync timeout must be positive")
	}
	return nil
}
