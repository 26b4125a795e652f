package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const path = "infra/config"

// Load decodes the yaml or json file at the given path into v, depending on the extension.
func Load(file string, v interface{}) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not read config '%s': %w", file, err)
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".json":
		err = json.Unmarshal(b, v)
	default:
		return fmt.Errorf("unknown config format '%s'", file)
	}
	if err != nil {
		return fmt.Errorf("could not unmarshal config '%s': %w", file, err)
	}
	return nil
}

// MustLoad loads the config for the given key from the config directory.
// yaml is preferred over json.
func MustLoad(key string, v interface{}) string {
	for _, ext := range []string{"yaml", "yml", "json"} {
		file := filepath.Join(path, fmt.Sprintf("%s.%s", key, ext))
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := Load(file, v); err != nil {
			panic(fmt.Sprintf("could not load config for %s: %s", key, err.Error()))
		}
		log.Info().Str("config", key).Str("file", file).Msg("loaded default config")
		return file
	}
	panic(fmt.Sprintf("could not find config for %s in %s", key, path))
}
