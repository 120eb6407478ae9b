package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	BaseURL     string
	DataDir     string
	Environment string
	Devstack    bool

	// Where the browser client talks to. With the devstack enabled and no
	// SUPABASE_URL set, this is BaseURL itself.
	SupabaseURL string
	AnonKey     string
	DevBypass   bool

	Auth        AuthConfig
	Log         LogConfig
	CORSOrigins []string
	Email       EmailConfig
}

type AuthConfig struct {
	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	RequireConfirm bool
	SignInRate     float64
	SignInBurst    int
}

type LogConfig struct {
	Level  string
	Format string
}

type EmailConfig struct {
	FromEmail    string
	ResendAPIKey string
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads configuration from flags, the environment and an optional
// .env file in the working directory. Real environment variables win over
// the file.
func Load(flagAddr, flagBaseURL, flagDataDir string, devstack bool) Config {
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getEnv("FRIDGE_BASE_URL", flagBaseURL), "/")
	supabaseURL := getEnv("SUPABASE_URL", "")
	if supabaseURL == "" && devstack {
		supabaseURL = baseURL
	}

	return Config{
		Addr:        flagAddr,
		BaseURL:     baseURL,
		DataDir:     flagDataDir,
		Environment: getEnv("FRIDGE_ENV", "development"),
		Devstack:    devstack,
		SupabaseURL: strings.TrimRight(supabaseURL, "/"),
		AnonKey:     getEnv("SUPABASE_ANON_KEY", ""),
		DevBypass:   getBool("FRIDGE_DEV_BYPASS", false),
		Auth: AuthConfig{
			JWTSecret:      getEnv("FRIDGE_JWT_SECRET", ""),
			AccessTTL:      getDuration("FRIDGE_ACCESS_TTL", time.Hour),
			RefreshTTL:     getDuration("FRIDGE_REFRESH_TTL", 30*24*time.Hour),
			RequireConfirm: getBool("FRIDGE_REQUIRE_CONFIRM", false),
			SignInRate:     getFloat("FRIDGE_SIGNIN_RATE", 1),
			SignInBurst:    getInt("FRIDGE_SIGNIN_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("FRIDGE_LOG_LEVEL", "info"),
			Format: getEnv("FRIDGE_LOG_FORMAT", ""),
		},
		CORSOrigins: splitList(getEnv("FRIDGE_CORS_ORIGINS", "*")),
		Email: EmailConfig{
			FromEmail:    getEnv("FRIDGE_FROM_EMAIL", "Fridge <fridge@resend.dev>"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPEnabled:  strings.EqualFold(getEnv("SMTP_ENABLED", "false"), "true"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPass:     getEnv("SMTP_PASS", ""),
		},
	}
}

// Validate reports configuration that would leave the server unusable.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.SupabaseURL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required unless -devstack is set"))
	}
	if c.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if c.Devstack {
		if len(c.Auth.JWTSecret) < 32 {
			errs = append(errs, fmt.Errorf("FRIDGE_JWT_SECRET must be at least 32 bytes, got %d", len(c.Auth.JWTSecret)))
		}
		if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
			errs = append(errs, errors.New("token lifetimes must be positive"))
		}
	}
	return errors.Join(errs...)
}

// ClientEnv is the subset of settings handed to the browser.
func (c Config) ClientEnv() map[string]string {
	return map[string]string{
		"SUPABASE_URL":      c.SupabaseURL,
		"SUPABASE_ANON_KEY": c.AnonKey,
		"FRIDGE_DEV_BYPASS": strconv.FormatBool(c.DevBypass),
		"FRIDGE_LOG_LEVEL":  c.Log.Level,
	}
}
