package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	MongoDB           string `mapstructure:"MONGO_DB"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation sessions are evicted after this idle window.
	ConversationTTL time.Duration `mapstructure:"CONVERSATION_TTL"`

	// Post-booking synchronization policy.
	SyncMaxAttempts int           `mapstructure:"SYNC_MAX_ATTEMPTS"`
	SyncRetryDelay  time.Duration `mapstructure:"SYNC_RETRY_DELAY"`
	GatewayTimeout  time.Duration `mapstructure:"GATEWAY_TIMEOUT"`

	// Business hours and booking policy.
	BusinessHoursStart string `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd   string `mapstructure:"BUSINESS_HOURS_END"`
	AllowedDurations   string `mapstructure:"ALLOWED_DURATIONS"`

	// SMTP notification settings.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	FromEmail    string `mapstructure:"FROM_EMAIL"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL"`

	// Google Calendar integration.
	GoogleCalendarAPIKey string `mapstructure:"GOOGLE_CALENDAR_API_KEY"`
	GoogleCalendarID     string `mapstructure:"GOOGLE_CALENDAR_ID"`

	// HubSpot CRM integration.
	HubSpotAPIKey string `mapstructure:"HUBSPOT_API_KEY"`

	// Gemini intent extraction.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Google Cloud Speech transcription.
	GoogleSpeechEnabled bool `mapstructure:"GOOGLE_SPEECH_ENABLED"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "voicedesk")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CONVERSATION_TTL", "30m")
	viper.SetDefault("SYNC_MAX_ATTEMPTS", 3)
	viper.SetDefault("SYNC_RETRY_DELAY", "30s")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")
	viper.SetDefault("BUSINESS_HOURS_START", "09:00")
	viper.SetDefault("BUSINESS_HOURS_END", "17:00")
	viper.SetDefault("ALLOWED_DURATIONS", "15,30,45,60")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("GOOGLE_SPEECH_ENABLED", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AllowedDurationSet parses ALLOWED_DURATIONS into a lookup set of minutes.
func AllowedDurationSet() map[int]bool {
	set := make(map[int]bool)
	for _, part := range strings.Split(AppConfig.AllowedDurations, ",") {
		if mins, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && mins > 0 {
			set[mins] = true
		}
	}
	if len(set) == 0 {
		for _, d := range []int{15, 30, 45, 60} {
			set[d] = true
		}
	}
	return set
}
