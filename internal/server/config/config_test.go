package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLookup переменные окружения для тестов
func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noEnvFile указывает на несуществующий .env, чтобы тест не зависел от рабочего каталога
func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "gravatar", cfg.Avatars.DefaultService)
	assert.False(t, cfg.S3.Enabled())

	// Без секрета конфигурация невалидна
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	cfg.Auth.SecretKey = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(c *Config)
		name    string
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "empty dsn", mutate: func(c *Config) { c.Database.DSN = "" }, wantErr: "dsn is required"},
		{name: "empty address", mutate: func(c *Config) { c.Address = "" }, wantErr: "address is required"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 }, wantErr: "ttl must be positive"},
		{name: "no avatar service", mutate: func(c *Config) { c.Avatars.DefaultService = "" }, wantErr: "avatar service"},
		{name: "s3 without presign ttl", mutate: func(c *Config) { c.S3.Bucket = "b"; c.S3.PresignTTL = 0 }, wantErr: "presign ttl"},
		{name: "bad rate limit", mutate: func(c *Config) { c.RateLimit.Requests = 0 }, wantErr: "rate limit"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.SecretKey = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "INFO", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "garbage", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}
}

func TestLoad_Layering(t *testing.T) {
	configFile := writeFile(t, "webkit.toml", `
address = ":9000"
log_level = "debug"

[database]
driver = "postgres"
dsn = "postgres://file"

[auth]
secret_key = "from-file"
access_token_ttl = "30m"

[s3]
bucket = "avatars"
use_path_style = true
`)

	env := map[string]string{
		"WEBKIT_DB_DSN":         "postgres://env",
		"WEBKIT_S3_PRESIGN_TTL": "5m",
		"WEBKIT_RATE_LIMIT":     "50",
	}

	cfg, err := Load([]string{"-config", configFile, noEnvFile(t), "-s", "from-flag"}, mapLookup(env))
	require.NoError(t, err)

	// файл
	assert.Equal(t, ":9000", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "avatars", cfg.S3.Bucket)
	assert.True(t, cfg.S3.UsePathStyle)
	// окружение поверх файла
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.S3.PresignTTL)
	assert.Equal(t, 50, cfg.RateLimit.Requests)
	// флаги поверх всего
	assert.Equal(t, "from-flag", cfg.Auth.SecretKey)
	// не заданное нигде остается по умолчанию
	assert.Equal(t, "gravatar", cfg.Avatars.DefaultService)
	assert.Equal(t, 10, cfg.RateLimit.AuthRequests)
	assert.False(t, cfg.RateLimit.TrustProxy)
}

func TestLoad_TrustProxy(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
		args []string
		want bool
	}{
		{name: "default off", want: false},
		{name: "env", env: map[string]string{"WEBKIT_TRUST_PROXY": "true"}, want: true},
		{name: "flag", args: []string{"-trust-proxy"}, want: true},
		{name: "flag overrides env", env: map[string]string{"WEBKIT_TRUST_PROXY": "true"}, args: []string{"-trust-proxy=false"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{"WEBKIT_SECRET_KEY": "k"}
			for k, v := range tt.env {
				env[k] = v
			}
			cfg, err := Load(append([]string{noEnvFile(t)}, tt.args...), mapLookup(env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.RateLimit.TrustProxy)
		})
	}

	configFile := writeFile(t, "webkit.toml", "[auth]\nsecret_key = \"k\"\n[rate_limit]\ntrust_proxy = true\n")
	cfg, err := Load([]string{"-config", configFile, noEnvFile(t)}, mapLookup(nil))
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.TrustProxy)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	configFile := writeFile(t, "webkit.toml", "address = \":7000\"\n[auth]\nsecret_key = \"k\"\n")

	cfg, err := Load([]string{noEnvFile(t)}, mapLookup(map[string]string{"WEBKIT_CONFIG": configFile}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Address)
}

func TestLoad_FlagsOnly(t *testing.T) {
	cfg, err := Load([]string{noEnvFile(t), "-a", ":1234", "-s", "secret", "-t", "1h", "-db-driver", "postgres", "-d", "postgres://x"}, mapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, ":1234", cfg.Address)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://x", cfg.Database.DSN)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "WEBKIT_SECRET_KEY"
	if _, set := os.LookupEnv(key); set {
		t.Skip(key + " is set in the environment")
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := writeFile(t, ".env", key+"=from-dotenv\n")

	cfg, err := Load([]string{"-env-file", envFile}, os.LookupEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.SecretKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
		file string
		args []string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "missing config file", args: []string{"-config", "/does/not/exist.toml"}},
		{name: "unknown toml key", file: "secret = 1\n"},
		{name: "broken toml", file: "address = \n"},
		{name: "bad duration env", env: map[string]string{"WEBKIT_SECRET_KEY": "k", "WEBKIT_ACCESS_TOKEN_TTL": "soon"}},
		{name: "bad int env", env: map[string]string{"WEBKIT_SECRET_KEY": "k", "WEBKIT_RATE_LIMIT": "many"}},
		{name: "bad bool env", env: map[string]string{"WEBKIT_SECRET_KEY": "k", "WEBKIT_S3_PATH_STYLE": "maybe"}},
		{name: "bad trust proxy env", env: map[string]string{"WEBKIT_SECRET_KEY": "k", "WEBKIT_TRUST_PROXY": "sometimes"}},
		{name: "invalid result", env: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{noEnvFile(t)}, tt.args...)
			if tt.file != "" {
				args = append(args, "-config", writeFile(t, "bad.toml", tt.file))
			}

			_, err := Load(args, mapLookup(tt.env))
			require.Error(t, err)
		})
	}
}
