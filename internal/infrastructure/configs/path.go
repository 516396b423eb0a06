package configs

import (
	"errors"
	"os"

	"github.com/hilthontt/encore/internal/infrastructure/env"
)

var ErrConfigNotFound = errors.New("config file not found. Use --config or ENCORE_CONFIG env")

// DetermineConfigPath resolves the config file from the flag value, then
// ENCORE_CONFIG, then the well-known locations.
func DetermineConfigPath(flagValue string) (string, error) {
	configPath := flagValue

	if configPath == "" {
		configPath = env.GetString("ENCORE_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"../../config.yaml", // keep for local dev
			"/etc/encore/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath == "" {
		return "", ErrConfigNotFound
	}

	return configPath, nil
}
