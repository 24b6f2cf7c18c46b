package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh directory so DefaultConfigFile and DefaultEnvFile
// lookups are isolated. Tests using it must not run in parallel.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvHost, EnvAPIKey, EnvUser, EnvProduct, EnvProxy} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	path := filepath.Join(dir, "gate.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
host = "https://dojo.example.com"
user = "ci-bot"
product = "7"
dir = "reports"
format = "junit"
settle_seconds = 30
timeout_seconds = 60

[thresholds]
critical = 0
high = 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dojo.example.com", cfg.Host)
	assert.Equal(t, "ci-bot", cfg.User)
	assert.Equal(t, "7", cfg.ProductID)
	assert.Equal(t, "reports", cfg.Dir)
	assert.Equal(t, "junit", cfg.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.SettleWait)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, models.Int(0), cfg.Thresholds.Critical)
	assert.Equal(t, models.Int(5), cfg.Thresholds.High)
	assert.Nil(t, cfg.Thresholds.Medium)
}

func TestLoadDefaultFileWhenPresent(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(`product = "9"`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9", cfg.ProductID)
	assert.Equal(t, "terminal", cfg.OutputFormat)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(`host = `), 0o644))
	_, err := Load("")
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile),
		[]byte("host = \"https://file.example.com\"\nuser = \"file-user\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultEnvFile),
		[]byte("DOJO_API_KEY=from-dotenv\nDOJO_USER=dotenv-user\n"), 0o644))
	t.Setenv(EnvHost, "https://env.example.com")
	t.Setenv(EnvUser, "env-user")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Host)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
	// Real environment wins over .env
	assert.Equal(t, "env-user", cfg.User)
}

func validConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.Host = "https://dojo.example.com"
	cfg.APIKey = "key"
	cfg.User = "ci-bot"
	cfg.ProductID = "7"
	cfg.Dir = "reports"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*models.Config) {}},
		{name: "missing host and key", mutate: func(c *models.Config) { c.Host, c.APIKey = "", "" }, wantErr: "--host, --api-key"},
		{name: "no input", mutate: func(c *models.Config) { c.Dir = "" }, wantErr: "no file or directory"},
		{name: "file without scanner", mutate: func(c *models.Config) { c.File = "zap.xml" }, wantErr: "scanner type"},
		{name: "negative threshold", mutate: func(c *models.Config) { c.Thresholds.High = models.Int(-1) }, wantErr: "--high"},
		{name: "negative settle", mutate: func(c *models.Config) { c.SettleWait = -time.Second }, wantErr: "--settle"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMissingScannerIsTyped(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.File = "zap.xml"
	var ms *models.MissingScannerTypeError
	assert.ErrorAs(t, Validate(cfg), &ms)
}
