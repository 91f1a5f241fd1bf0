package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the companion service.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	// RedirectCooldown bounds how long the gate suppresses a repeated
	// redirect to the same target. Tunable; 2s matches the mobile shell.
	RedirectCooldown time.Duration
	// DraftTTL is the abandonment policy for registration drafts: drafts
	// untouched for this long are reclaimed.
	DraftTTL    time.Duration
	RedisURL    string
	PostgresDSN string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PEAKFORM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:             addr,
		JWTSigningKey:    jwtSigningKey,
		TokenTTL:         durationFromEnv("TOKEN_TTL_MINUTES", 60) * time.Minute,
		RedirectCooldown: durationFromEnv("REDIRECT_COOLDOWN_SECONDS", 2) * time.Second,
		DraftTTL:         durationFromEnv("DRAFT_TTL_HOURS", 24) * time.Hour,
		RedisURL:         os.Getenv("REDIS_URL"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
	}
}

func durationFromEnv(key string, fallback int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return time.Duration(fallback)
	}
	return time.Duration(n)
}
