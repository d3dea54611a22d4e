package config

import (
	"flag"
	"io"
)

// fileFlags пути к файлам конфигурации, сами в Config не попадают
type fileFlags struct {
	configFile string
	envFile    string
}

// newFlagSet создает набор флагов, привязанный к cfg.
// Значения по умолчанию берутся из текущего состояния cfg.
//
//	-config string   путь к TOML файлу
//	-env-file string путь к .env файлу
//	-a string        адрес HTTP сервера
//	-db-driver       sqlite | postgres
//	-d string        DSN базы данных
//	-s string        секретный ключ
//	-t duration      время жизни access token
func newFlagSet(cfg *Config, files *fileFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("webkit-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&files.configFile, "config", "", "path to TOML config file")
	fs.StringVar(&files.envFile, "env-file", "", "path to .env file")

	fs.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "database driver (sqlite, postgres)")
	fs.StringVar(&cfg.Database.DSN, "d", cfg.Database.DSN, "database DSN")
	fs.StringVar(&cfg.Auth.SecretKey, "s", cfg.Auth.SecretKey, "secret key")
	fs.DurationVar(&cfg.Auth.AccessTokenTTL, "t", cfg.Auth.AccessTokenTTL, "access token ttl")
	fs.StringVar(&cfg.Avatars.DefaultService, "avatar-service", cfg.Avatars.DefaultService, "default avatar service id")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket for uploaded avatars")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3 base endpoint (e.g. http://127.0.0.1:9000)")
	fs.IntVar(&cfg.RateLimit.Requests, "rate-limit", cfg.RateLimit.Requests, "requests per window per IP")
	fs.BoolVar(&cfg.RateLimit.TrustProxy, "trust-proxy", cfg.RateLimit.TrustProxy, "take client IP from X-Forwarded-For (only behind a reverse proxy)")

	return fs
}
