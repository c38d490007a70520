// Package config loads runtime configuration from YAML files, .env files and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string `mapstructure:"-"`

	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Twitter   TwitterConfig   `mapstructure:"twitter"`
	Verify    VerifyConfig    `mapstructure:"verify"`
	Referral  ReferralConfig  `mapstructure:"referral"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Features  FeaturesConfig  `mapstructure:"features"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	GinMode         string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret" validate:"required,min=16"`
}

// AdminConfig seeds the first admin account at startup when both fields are set.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password" validate:"omitempty,min=8"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
	// File enables rotated file output next to stdout when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

type TelegramConfig struct {
	Token                string        `mapstructure:"token"`
	APIURL               string        `mapstructure:"api_url"`
	Offline              bool          `mapstructure:"offline"`
	AnnouncementChatID   int64         `mapstructure:"announcement_chat_id"`
	CommunityChatID      int64         `mapstructure:"community_chat_id"`
	BotUsername          string        `mapstructure:"bot_username"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	BroadcastConcurrency int           `mapstructure:"broadcast_concurrency" validate:"min=1"`
}

type TwitterConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	APIKey         string        `mapstructure:"api_key"`
	FollowAccount  string        `mapstructure:"follow_account"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxPages       int           `mapstructure:"max_pages" validate:"min=1"`
}

type VerifyConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	QuoteDelay time.Duration `mapstructure:"quote_delay"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

type ReferralConfig struct {
	RewardPoints int64 `mapstructure:"reward_points" validate:"min=0"`
}

type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Timezone        string `mapstructure:"timezone" validate:"required"`
	DailyResetCron  string `mapstructure:"daily_reset_cron"`
	ExpiryCron      string `mapstructure:"expiry_cron"`
	TaskTTLDays     int    `mapstructure:"task_ttl_days" validate:"min=0"`
	ReminderCron    string `mapstructure:"reminder_cron"`
	ReminderMessage string `mapstructure:"reminder_message"`
}

type CacheConfig struct {
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit" validate:"min=1"`
	Window  time.Duration `mapstructure:"window"`
}

type FeaturesConfig struct {
	QuotePlaceholder         bool `mapstructure:"quote_placeholder"`
	AllowResubmitAfterReject bool `mapstructure:"allow_resubmit_after_reject"`
}

// Load reads ./configs/<APP_ENV>.yaml, applies environment overrides and validates the result.
// The returned viper instance is kept for config watching.
func Load() (*Config, *viper.Viper, error) {
	// .env files are optional
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Location resolves the scheduler time zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "points")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "points")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("session.secret", "")

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.offline", false)
	v.SetDefault("telegram.announcement_chat_id", 0)
	v.SetDefault("telegram.community_chat_id", 0)
	v.SetDefault("telegram.bot_username", "")
	v.SetDefault("telegram.request_timeout", 10*time.Second)
	v.SetDefault("telegram.broadcast_concurrency", 8)

	v.SetDefault("twitter.base_url", "https://api.twitterapi.io")
	v.SetDefault("twitter.api_key", "")
	v.SetDefault("twitter.follow_account", "")
	v.SetDefault("twitter.request_timeout", 10*time.Second)
	v.SetDefault("twitter.max_pages", 20)

	v.SetDefault("verify.timeout", 30*time.Second)
	v.SetDefault("verify.quote_delay", 5*time.Second)
	v.SetDefault("verify.lock_ttl", 45*time.Second)

	v.SetDefault("referral.reward_points", 100)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "Asia/Kolkata")
	v.SetDefault("scheduler.daily_reset_cron", "0 0 * * *")
	v.SetDefault("scheduler.expiry_cron", "30 0 * * *")
	v.SetDefault("scheduler.task_ttl_days", 0)
	v.SetDefault("scheduler.reminder_cron", "")
	v.SetDefault("scheduler.reminder_message", "")

	v.SetDefault("cache.leaderboard_ttl", 30*time.Second)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("features.quote_placeholder", true)
	v.SetDefault("features.allow_resubmit_after_reject", true)
}
