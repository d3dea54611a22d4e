// Package config собирает настройки сервера: значения по умолчанию,
// затем TOML файл, затем .env и переменные окружения WEBKIT_*, затем флаги.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DriverSQLite хранилище в файле SQLite
	DriverSQLite = "sqlite"
	// DriverPostgres хранилище в PostgreSQL
	DriverPostgres = "postgres"
)

// ErrInvalidConfig возвращается при невалидной конфигурации
var ErrInvalidConfig = errors.New("invalid config")

// Config настройки сервера
type Config struct {
	Address         string        `toml:"address"`
	LogLevel        string        `toml:"log_level"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Avatars   AvatarsConfig   `toml:"avatars"`
	S3        S3Config        `toml:"s3"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// DatabaseConfig настройки хранилища
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// AuthConfig настройки JWT и генерации API токенов
type AuthConfig struct {
	// SecretKey подписывает JWT и входит в дайджест API токенов
	SecretKey      string        `toml:"secret_key"`
	AccessTokenTTL time.Duration `toml:"access_token_ttl"`
}

// AvatarsConfig настройки сервисов аватаров
type AvatarsConfig struct {
	DefaultService  string `toml:"default_service"`
	GravatarBaseURL string `toml:"gravatar_base_url"`
	InitialsBaseURL string `toml:"initials_base_url"`
}

// S3Config настройки object storage для загруженных аватаров.
// Пустой Bucket отключает загрузку.
type S3Config struct {
	Bucket       string        `toml:"bucket"`
	Region       string        `toml:"region"`
	Endpoint     string        `toml:"endpoint"`
	AccessKey    string        `toml:"access_key"`
	SecretKey    string        `toml:"secret_key"`
	PresignTTL   time.Duration `toml:"presign_ttl"`
	UsePathStyle bool          `toml:"use_path_style"`
}

// Enabled сообщает, настроено ли object storage
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// RateLimitConfig лимиты запросов с одного IP.
// TrustProxy включает X-Forwarded-For/X-Real-IP; без него ключ лимита - адрес соединения.
type RateLimitConfig struct {
	Window       time.Duration `toml:"window"`
	Requests     int           `toml:"requests"`
	AuthRequests int           `toml:"auth_requests"`
	TrustProxy   bool          `toml:"trust_proxy"`
}

// Default возвращает настройки для локальной разработки.
// SecretKey по умолчанию пустой и должен быть задан явно.
func Default() *Config {
	return &Config{
		Address:         ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "webkit.db",
		},
		Auth: AuthConfig{
			AccessTokenTTL: 15 * time.Minute,
		},
		Avatars: AvatarsConfig{
			DefaultService: "gravatar",
		},
		S3: S3Config{
			Region:     "us-east-1",
			PresignTTL: 15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Window:       time.Minute,
			Requests:     120,
			AuthRequests: 10,
		},
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.Avatars.DefaultService == "" {
		errs = append(errs, errors.New("default avatar service is required"))
	}
	if c.S3.Enabled() && c.S3.PresignTTL <= 0 {
		errs = append(errs, errors.New("s3 presign ttl must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.AuthRequests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit values must be positive"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SlogLevel уровень логирования для slog
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Load собирает конфигурацию из всех источников.
// args аргументы командной строки без имени программы.
func Load(args []string, lookup LookupFunc) (*Config, error) {
	// Первый проход нужен только чтобы узнать пути к файлам
	// и сообщить об ошибке в аргументах до чтения файлов.
	scratch := Default()
	files := fileFlags{}
	if err := newFlagSet(scratch, &files).Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if files.envFile == "" {
		files.envFile = ".env"
	}
	if err := loadDotEnv(files.envFile); err != nil {
		return nil, err
	}

	if files.configFile == "" {
		files.configFile, _ = lookup(envPrefix + "CONFIG")
	}

	cfg := Default()
	if files.configFile != "" {
		if err := loadTOML(files.configFile, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	// Флаги имеют наивысший приоритет: значения по умолчанию у FlagSet
	// уже текущие, поэтому переопределяются только явно переданные флаги.
	if err := newFlagSet(cfg, &fileFlags{}).Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
