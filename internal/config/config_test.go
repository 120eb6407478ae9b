package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("FRIDGE_BASE_URL", "")

	cfg := Load(":8080", "http://localhost:8080/", "data", true)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "http://localhost:8080", cfg.SupabaseURL, "devstack serves the API itself")
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 5, cfg.Auth.SignInBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "587", cfg.Email.SMTPPort)
	assert.False(t, cfg.DevBypass)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("FRIDGE_ACCESS_TTL", "15m")
	t.Setenv("FRIDGE_REFRESH_TTL", "nonsense")
	t.Setenv("FRIDGE_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FRIDGE_DEV_BYPASS", "true")
	t.Setenv("FRIDGE_SIGNIN_RATE", "0.5")

	cfg := Load(":8080", "http://localhost:8080", "data", false)

	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL, "invalid duration falls back")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.DevBypass)
	assert.InDelta(t, 0.5, cfg.Auth.SignInRate, 1e-9)
	assert.Equal(t, "true", cfg.ClientEnv()["FRIDGE_DEV_BYPASS"])
}

func TestValidate(t *testing.T) {
	base := Config{
		Addr:        ":8080",
		SupabaseURL: "http://localhost:8080",
		AnonKey:     "anon",
		Auth:        AuthConfig{AccessTTL: time.Hour, RefreshTTL: time.Hour},
	}
	require.NoError(t, base.Validate())

	dev := base
	dev.Devstack = true
	dev.Auth.JWTSecret = "short"
	assert.ErrorContains(t, dev.Validate(), "FRIDGE_JWT_SECRET")

	dev.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, dev.Validate())

	missing := base
	missing.AnonKey = ""
	missing.SupabaseURL = ""
	err := missing.Validate()
	assert.ErrorContains(t, err, "SUPABASE_URL")
	assert.ErrorContains(t, err, "SUPABASE_ANON_KEY")
}
