package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ListenAddr   string `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/reviews.db"`

	// Conversation lifecycle
	StateTTLSeconds        int `env:"STATE_TTL_SECONDS" envDefault:"1800"`
	DuplicateWindowSeconds int `env:"DUPLICATE_WINDOW_SECONDS" envDefault:"600"`
	SweepIntervalSeconds   int `env:"SWEEP_INTERVAL_SECONDS" envDefault:"300"`

	// Messaging provider prefixes its contact identifiers, e.g. "whatsapp:+1415...".
	ContactPrefix string `env:"CONTACT_PREFIX" envDefault:"whatsapp:"`

	// Listing endpoint
	ListDefaultLimit int `env:"LIST_DEFAULT_LIMIT" envDefault:"100"`
	ListMaxLimit     int `env:"LIST_MAX_LIMIT" envDefault:"1000"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}
	return cfg
}

func (c *Config) StateTTL() time.Duration {
	return time.Duration(c.StateTTLSeconds) * time.Second
}

func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
