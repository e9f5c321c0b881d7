package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_DATA_DIR points the suite at a persistent store; empty means a
	// fresh temporary directory per run
	DataDir string `envconfig:"E2E_DATA_DIR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours  bool   `envconfig:"E2E_COLOURS" default:"true"`
	LogLevel string `envconfig:"E2E_LOG_LEVEL" default:"debug"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
