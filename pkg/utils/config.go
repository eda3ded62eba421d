package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, read once from the environment.
type Config struct {
	DirectoryBaseURL string        `env:"RICKDEX_API_BASE_URL" envDefault:"https://rickandmortyapi.com/api"`
	HTTPTimeout      time.Duration `env:"RICKDEX_HTTP_TIMEOUT" envDefault:"12s"`
	Debounce         time.Duration `env:"RICKDEX_DEBOUNCE" envDefault:"500ms"`

	DBPath string `env:"RICKDEX_DB_PATH"`

	HTTPAddr   string `env:"RICKDEX_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr   string `env:"RICKDEX_GRPC_ADDR" envDefault:":9090"`
	MirrorAddr string `env:"RICKDEX_MIRROR_ADDR" envDefault:":9000"`

	Session SessionConfig
}

type SessionConfig struct {
	Secret string        `env:"RICKDEX_SESSION_SECRET" envDefault:"dev-secret-change-me"`
	Issuer string        `env:"RICKDEX_SESSION_ISSUER" envDefault:"rickdex"`
	TTL    time.Duration `env:"RICKDEX_SESSION_TTL" envDefault:"30m"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Debounce <= 0 {
		return Config{}, fmt.Errorf("RICKDEX_DEBOUNCE must be positive, got %s", cfg.Debounce)
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 30 * time.Minute
	}
	return cfg, nil
}
