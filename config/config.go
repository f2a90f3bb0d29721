package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Stripe     StripeConfig
	Twitch     TwitchConfig
	Cloudinary CloudinaryConfig
	Payout     PayoutConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// StripeConfig covers deposits, Connect onboarding and the webhook endpoint.
type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	Currency          string
	MinDepositCents   int64
	MaxDepositCents   int64
	ConnectRefreshURL string // where Stripe sends the user when the onboarding link expires
	ConnectReturnURL  string // where Stripe sends the user after onboarding completes
}

type TwitchConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type PayoutConfig struct {
	MinWithdrawalCents int64
}

type JobsConfig struct {
	MetricsRefreshSpec       string // cron spec for the submission metrics refresh
	AutoApproveEarningsCents int64  // 0 disables auto-approval
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_DSN", "klipz:klipz@tcp(localhost:3306)/klipz?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "klipz",
		},
		Stripe: StripeConfig{
			SecretKey:         getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:     getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:          getEnv("STRIPE_CURRENCY", "usd"),
			MinDepositCents:   getEnvInt64("MIN_DEPOSIT_CENTS", 500),
			MaxDepositCents:   getEnvInt64("MAX_DEPOSIT_CENTS", 1000000),
			ConnectRefreshURL: getEnv("CONNECT_REFRESH_URL", "https://klipz.app/connect/refresh"),
			ConnectReturnURL:  getEnv("CONNECT_RETURN_URL", "https://klipz.app/connect/return"),
		},
		Twitch: TwitchConfig{
			ClientID:     getEnv("TWITCH_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITCH_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("TWITCH_REDIRECT_URL", "https://klipz.app/api/v1/auth/twitch/callback"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Payout: PayoutConfig{
			MinWithdrawalCents: getEnvInt64("MIN_WITHDRAWAL_CENTS", 1000),
		},
		Jobs: JobsConfig{
			MetricsRefreshSpec:       getEnv("METRICS_REFRESH_SPEC", "@every 10m"),
			AutoApproveEarningsCents: getEnvInt64("AUTO_APPROVE_EARNINGS_CENTS", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
