package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig holds the merchant credentials for a single payment provider.
// A provider is advertised as enabled only when MerchantUID and APIKey are set.
type ProviderConfig struct {
	MerchantUID string `mapstructure:"MERCHANT_UID"`
	APIUserID   string `mapstructure:"API_USER_ID"`
	APIKey      string `mapstructure:"API_KEY"`
	Endpoint    string `mapstructure:"ENDPOINT"`
}

func (p ProviderConfig) Enabled() bool {
	return p.MerchantUID != "" && p.APIKey != ""
}

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisCounterDB int    `mapstructure:"REDIS_COUNTER_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment configuration.
	SessionTimeoutMinutes int    `mapstructure:"SESSION_TIMEOUT_MINUTES"`
	WebhookSecret         string `mapstructure:"WEBHOOK_SECRET"`
	DefaultCurrency       string `mapstructure:"DEFAULT_CURRENCY"`

	// Per-provider merchant credentials.
	Hormuud ProviderConfig `mapstructure:"HORMUUD"`
	Zaad    ProviderConfig `mapstructure:"ZAAD"`
	Edahab  ProviderConfig `mapstructure:"EDAHAB"`
	Premier ProviderConfig `mapstructure:"PREMIER"`
}

// SessionTimeout returns the configured payment session lifetime.
func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_COUNTER_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SESSION_TIMEOUT_MINUTES", 30)
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("DEFAULT_CURRENCY", "USD")

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
