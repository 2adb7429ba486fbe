package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	ServerURL     string
	FallbackURL   string
	GameID        string
	SessionCookie string
	CardCachePath string
	RejoinDelay   time.Duration
}

// Load reads .env if present, then the environment. A missing .env is
// fine; the client may be configured entirely by flags.
func Load(log *zap.Logger) Config {
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}
	return Config{
		ServerURL:     getenv("TABLETOP_SERVER_URL", "ws://localhost:8080/ws"),
		FallbackURL:   getenv("TABLETOP_FALLBACK_URL", ""),
		GameID:        getenv("TABLETOP_GAME_ID", ""),
		SessionCookie: getenv("TABLETOP_SESSION", ""),
		CardCachePath: getenv("TABLETOP_CARD_CACHE", "cardcache.json"),
		RejoinDelay:   getDuration("TABLETOP_REJOIN_DELAY", 2*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
