package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// loadTOML накладывает значения из TOML файла на cfg.
// Ключи, отсутствующие в файле, не меняются; неизвестные ключи считаются ошибкой.
func loadTOML(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	return nil
}
