package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config collects every env-driven setting so nothing else reads the
// environment directly.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string

	JWTSecret  string
	JWTTTL     time.Duration
	RefreshTTL time.Duration

	// AppointmentFee is the flat consultation fee in the currency's smallest
	// unit, stamped on every appointment at creation.
	AppointmentFee int64

	StripeSecretKey string

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found. Using environment variables directly.")
	}

	cfg := Config{
		Port:            getEnv("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		JWTSecret:       getEnv("JWT_SECRET", "solid_secret_key"),
		JWTTTL:          24 * time.Hour,
		RefreshTTL:      7 * 24 * time.Hour,
		AppointmentFee:  getEnvInt64("APPOINTMENT_FEE", 5000),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		EmailUser:       os.Getenv("EMAIL_USER"),
		EmailPass:       os.Getenv("EMAIL_PASS"),
	}
	cfg.SMTPPort, _ = strconv.Atoi(os.Getenv("SMTP_PORT"))
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
