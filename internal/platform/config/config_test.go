// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/accounts/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/accounts")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TOKEN_SECRET", strings.Repeat("s", 32))
}

/*
TestLoad_Defaults verifies that defaults apply when only required keys are set.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "accounts", cfg.TokenIssuer)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

/*
TestLoad_Missing verifies that required keys are enforced.
*/
func TestLoad_Missing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("TOKEN_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestLoad_Validation verifies the cross-field checks.
*/
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		message string
	}{
		{"short_secret", "TOKEN_SECRET", "short", "TOKEN_SECRET"},
		{"bcrypt_cost", "BCRYPT_COST", "99", "BCRYPT_COST"},
		{"relative_app_url", "APP_URL", "/verify", "APP_URL"},
		{"smtp_port", "SMTP_PORT", "0", "SMTP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

/*
TestConfig_IsAllowedOrigin verifies the CORS allow-list.
*/
func TestConfig_IsAllowedOrigin(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_URL", "https://accounts.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, ,https://docs.example.com/")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://admin.example.com", "https://docs.example.com"}, cfg.AllowedOrigins)

	assert.True(t, cfg.IsAllowedOrigin("https://accounts.example.com"))
	assert.True(t, cfg.IsAllowedOrigin("https://docs.example.com"))
	assert.False(t, cfg.IsAllowedOrigin("https://evil.example.com"))
}
