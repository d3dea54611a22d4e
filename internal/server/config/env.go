package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "WEBKIT_"

// LookupFunc ищет переменную окружения, сигнатура совпадает с os.LookupEnv
type LookupFunc func(key string) (string, bool)

// loadDotEnv загружает .env файл в окружение процесса.
// Уже заданные переменные не перезаписываются, отсутствие файла не ошибка.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnv накладывает переменные WEBKIT_* на cfg
func applyEnv(cfg *Config, lookup LookupFunc) error {
	strs := map[string]*string{
		"ADDRESS":           &cfg.Address,
		"LOG_LEVEL":         &cfg.LogLevel,
		"DB_DRIVER":         &cfg.Database.Driver,
		"DB_DSN":            &cfg.Database.DSN,
		"SECRET_KEY":        &cfg.Auth.SecretKey,
		"AVATAR_SERVICE":    &cfg.Avatars.DefaultService,
		"GRAVATAR_BASE_URL": &cfg.Avatars.GravatarBaseURL,
		"INITIALS_BASE_URL": &cfg.Avatars.InitialsBaseURL,
		"S3_BUCKET":         &cfg.S3.Bucket,
		"S3_REGION":         &cfg.S3.Region,
		"S3_ENDPOINT":       &cfg.S3.Endpoint,
		"S3_ACCESS_KEY":     &cfg.S3.AccessKey,
		"S3_SECRET_KEY":     &cfg.S3.SecretKey,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT":  &cfg.ShutdownTimeout,
		"ACCESS_TOKEN_TTL":  &cfg.Auth.AccessTokenTTL,
		"S3_PRESIGN_TTL":    &cfg.S3.PresignTTL,
		"RATE_LIMIT_WINDOW": &cfg.RateLimit.Window,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, envPrefix, name, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"RATE_LIMIT":      &cfg.RateLimit.Requests,
		"AUTH_RATE_LIMIT": &cfg.RateLimit.AuthRequests,
	}
	for name, dst := range ints {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, envPrefix, name, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"S3_PATH_STYLE": &cfg.S3.UsePathStyle,
		"TRUST_PROXY":   &cfg.RateLimit.TrustProxy,
	}
	for name, dst := range bools {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, envPrefix, name, err)
		}
		*dst = b
	}

	return nil
}
