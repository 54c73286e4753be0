package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		Port       string `env:"PORT" envDefault:"8080"`
		LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
		AppPrefix  string `env:"APP_PREFIX" envDefault:"mimo"`
		AppURL     string `env:"APP_URL" envDefault:"http://localhost:5173"`
		CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
		DBURL      string `env:"DB_URL"`

		// SyncTimeout bounds the remote part of a package load or save.
		SyncTimeout time.Duration `env:"SYNC_TIMEOUT" envDefault:"10s"`
		RewardTTL   time.Duration `env:"REWARD_TTL" envDefault:"720h"`

		Auth   AuthConfig   `envPrefix:"AUTH_"`
		Redis  RedisConfig  `envPrefix:"REDIS_"`
		Stripe StripeConfig `envPrefix:"STRIPE_"`
		S3     S3Config     `envPrefix:"S3_"`
	}

	AuthConfig struct {
		JWTSecret    string `env:"JWT_SECRET"`
		OIDCIssuer   string `env:"OIDC_ISSUER"`
		OIDCClientID string `env:"OIDC_CLIENT_ID"`
	}

	RedisConfig struct {
		Addr     string `env:"ADDR" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	}

	StripeConfig struct {
		SecretKey     string `env:"SECRET_KEY"`
		WebhookSecret string `env:"WEBHOOK_SECRET"`
		Currency      string `env:"CURRENCY" envDefault:"brl"`
	}

	S3Config struct {
		Endpoint  string `env:"ENDPOINT"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"mimo-media"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
		PublicURL string `env:"PUBLIC_URL"`
	}
)

// C holds the configuration loaded by LoadEnv.
var C Config

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		log.WithError(err).Fatal("failed to read configuration")
	}
	C = cfg

	level, err := log.ParseLevel(C.LogLevel)
	if err != nil {
		log.WithField("level", C.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Parse reads the environment without touching C.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.DBURL == "" {
		return errors.New("missing required environment variable: DB_URL")
	}
	if c.Auth.JWTSecret == "" && c.Auth.OIDCIssuer == "" {
		return errors.New("one of AUTH_JWT_SECRET or AUTH_OIDC_ISSUER must be set")
	}
	return nil
}

// S3Enabled reports whether media uploads can be stored.
func (c Config) S3Enabled() bool {
	return c.S3.Endpoint != "" && c.S3.AccessKey != "" && c.S3.SecretKey != ""
}
