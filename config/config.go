package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	BaseURL           string `mapstructure:"BASE_URL"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Grace period during which a pending booking still blocks its interval.
	LockTTLMinutes int `mapstructure:"LOCK_TTL_MINUTES"`

	// Redis configuration (asynq task queue).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`

	// Payment provider secrets, one pair per currency. These are loaded once
	// here and injected into the verifiers as an explicit secret map; nothing
	// reads the environment at verification time.
	RazorpayKeyID        string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret    string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayKeyIDUSD     string `mapstructure:"RAZORPAY_KEY_ID_USD"`
	RazorpayKeySecretUSD string `mapstructure:"RAZORPAY_KEY_SECRET_USD"`
	PayUMerchantKey      string `mapstructure:"PAYU_MERCHANT_KEY"`
	PayUSalt             string `mapstructure:"PAYU_SALT"`
	PayUMerchantKeyUSD   string `mapstructure:"PAYU_MERCHANT_KEY_USD"`
	PayUSaltUSD          string `mapstructure:"PAYU_SALT_USD"`
	PayUPaymentURL       string `mapstructure:"PAYU_PAYMENT_URL"`
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
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("LOCK_TTL_MINUTES", 5)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_TASK_DB", 0)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "slotbook")
	viper.SetDefault("PAYU_PAYMENT_URL", "https://test.payu.in/_payment")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// LockTTL returns the pending-booking grace period as a duration.
func LockTTL() time.Duration {
	minutes := AppConfig.LockTTLMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
