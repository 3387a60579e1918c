package main

import (
	"errors"
	"fmt"
	"strings"

	"tourii_backend/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth TelegramAuthConfig `yaml:"telegramAuth"`
	Notifier     NotifierConfig     `yaml:"notifier"`

	// MigrateOnStart applies the embedded schema before serving.
	MigrateOnStart bool `yaml:"migrateOnStart"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramAuthConfig struct {
	TelegramBotToken string `yaml:"telegramBotToken"`
	DebugMode        bool   `yaml:"debugMode"`
}

type NotifierConfig struct {
	// Telegram messages are only sent when enabled and a bot token is set.
	TelegramEnabled bool `yaml:"telegramEnabled"`
	TelegramDebug   bool `yaml:"telegramDebug"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("telegramAuth.debugMode", false)
	viper.SetDefault("database.catalogCacheSize", 256)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects auth settings that would accept unsigned init data outside
// of local development. Debug auth requires logLevel debug, which also keeps
// gin out of release mode.
func (c *Config) Validate() error {
	if c.TelegramAuth.DebugMode {
		if c.LogLevel != "debug" {
			return errors.New("telegramAuth.debugMode requires logLevel debug")
		}
		return nil
	}

	if c.TelegramAuth.TelegramBotToken == "" {
		return errors.New("telegramAuth.telegramBotToken is required")
	}

	return nil
}
