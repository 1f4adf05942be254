package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Production with default JWT secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production with short JWT secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"Production with default DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production with strong settings", func(c *Config) {
			c.Env = "production"
		}, false},
		{"Prod alias enforces strictness", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        "development",
				Port:       "8640",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "secure-password",
				DBSSLMode:  "require",
				RedisURL:   "localhost:6379",
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WebhookURLFor(t *testing.T) {
	c := &Config{
		DiscordWebhookURL:    "https://discord.example/default",
		DiscordWebhookEasy:   "https://discord.example/easy",
		DiscordWebhookExpert: "",
	}

	assert.Equal(t, "https://discord.example/easy", c.WebhookURLFor("easy"))
	assert.Equal(t, "https://discord.example/default", c.WebhookURLFor("medium"))
	assert.Equal(t, "https://discord.example/default", c.WebhookURLFor("expert"))
	assert.Equal(t, "https://discord.example/default", c.WebhookURLFor("unknown"))
}
