package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                 string
	AppEnv                  string
	AppPort                 string
	DatabaseURL             string
	RedisURL                string
	NATSURL                 string
	JWTSecret               string
	CloudinaryCloudName     string
	CloudinaryAPIKey        string
	CloudinaryAPISecret     string
	CloudinaryUploadFolder  string
	InsightCacheTTL         time.Duration
	NotificationChannelBase string
	AIProvider              string
	OpenAIAPIKey            string
	OpenAIModel             string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRIEV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Grievance API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "grievance/submissions")
	v.SetDefault("insights.cache_ttl", "2m")
	v.SetDefault("notifications.channel_base", "grievance")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")

	ttlString := v.GetString("insights.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid insights cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		DatabaseURL:             v.GetString("database.url"),
		RedisURL:                v.GetString("redis.url"),
		NATSURL:                 v.GetString("nats.url"),
		JWTSecret:               v.GetString("jwt.secret"),
		CloudinaryCloudName:     v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:        v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:     v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder:  v.GetString("cloudinary.folder"),
		InsightCacheTTL:         ttl,
		NotificationChannelBase: v.GetString("notifications.channel_base"),
		AIProvider:              strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:            v.GetString("openai_api_key"),
		OpenAIModel:             v.GetString("openai_model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
