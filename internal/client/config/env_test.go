package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Variables(t *testing.T) {
	withArgs(t)
	t.Chdir(t.TempDir())

	t.Setenv("HRMIS_DATABASE_DSN", "postgres://env")
	t.Setenv("HRMIS_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("HRMIS_AVATAR_MAX_SIDE", "256")
	t.Setenv("HRMIS_DEBUG", "true")

	cfg := &Config{S3Bucket: "kept"}
	parseEnv(cfg)

	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 256, cfg.AvatarMaxSide)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "kept", cfg.S3Bucket)
}

func TestParseEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("HRMIS_SMTP_HOST=smtp.example\nHRMIS_S3_REGION=eu-west-1\n"), 0o600))

	// an already exported variable wins over the file
	t.Setenv("HRMIS_S3_REGION", "us-west-2")
	// godotenv.Load sets variables directly; register them for cleanup
	t.Setenv("HRMIS_SMTP_HOST", "")
	require.NoError(t, os.Unsetenv("HRMIS_SMTP_HOST"))

	withArgs(t, "-E", path)

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "smtp.example", cfg.SMTPHost)
	assert.Equal(t, "us-west-2", cfg.S3Region)
}

func TestParseEnv_Errors(t *testing.T) {
	t.Run("missing explicit dotenv panics", func(t *testing.T) {
		withArgs(t, "-env", filepath.Join(t.TempDir(), "nope.env"))
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("malformed value panics", func(t *testing.T) {
		withArgs(t)
		t.Chdir(t.TempDir())
		t.Setenv("HRMIS_REFRESH_INTERVAL", "soon")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
