package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "Signed init data",
			cfg: Config{
				LogLevel:     "info",
				TelegramAuth: TelegramAuthConfig{TelegramBotToken: "123:abc"},
			},
		},
		{
			name: "Missing bot token",
			cfg: Config{
				LogLevel: "info",
			},
			wantErr: "telegramAuth.telegramBotToken is required",
		},
		{
			name: "Debug auth in release mode",
			cfg: Config{
				LogLevel:     "info",
				TelegramAuth: TelegramAuthConfig{DebugMode: true},
			},
			wantErr: "telegramAuth.debugMode requires logLevel debug",
		},
		{
			name: "Debug auth for local development",
			cfg: Config{
				LogLevel:     "debug",
				TelegramAuth: TelegramAuthConfig{DebugMode: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
